package card

import (
	"fmt"

	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/shopspring/decimal"
)

// Grade evaluates a pick against its game. Non-final games stay pending.
func Grade(p Pick, g game.Game) (Result, error) {
	if !g.IsFinal() {
		return ResultPending, nil
	}
	if g.Outcome == nil {
		return ResultPending, fmt.Errorf("%w: game %s has no final outcome", ErrUngradeableOutcome, g.ID)
	}
	outcome := *g.Outcome
	if outcome.HomeScore < 0 || outcome.AwayScore < 0 {
		return ResultPending, fmt.Errorf("%w: game %s has negative score %d-%d", ErrUngradeableOutcome, g.ID, outcome.HomeScore, outcome.AwayScore)
	}
	if p.Kind.RequiresLine() && p.Line == nil {
		return ResultPending, fmt.Errorf("%w: %s pick %s has no line", ErrUngradeableOutcome, p.Kind, p.ID)
	}
	if !p.Selection.AllowedFor(p.Kind) {
		return ResultPending, fmt.Errorf("%w: selection %q on %s pick %s", ErrUngradeableOutcome, p.Selection, p.Kind, p.ID)
	}

	switch p.Kind {
	case KindMoneyline:
		winner, ok := outcome.Winner()
		if !ok {
			return ResultPush, nil
		}
		if game.Side(p.Selection) == winner {
			return ResultWon, nil
		}
		return ResultLost, nil
	case KindSpread:
		selected, opponent := outcome.ScoreFor(game.Side(p.Selection))
		adjusted := decimal.NewFromInt(int64(selected - opponent)).Add(*p.Line)
		return fromSign(adjusted.Sign()), nil
	case KindTotal:
		diff := decimal.NewFromInt(int64(outcome.Total())).Sub(*p.Line)
		if p.Selection == SelectionUnder {
			diff = diff.Neg()
		}
		return fromSign(diff.Sign()), nil
	default:
		return ResultPending, fmt.Errorf("%w: unknown kind %q", ErrUngradeableOutcome, p.Kind)
	}
}

func fromSign(sign int) Result {
	switch {
	case sign > 0:
		return ResultWon
	case sign < 0:
		return ResultLost
	default:
		return ResultPush
	}
}
