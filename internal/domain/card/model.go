package card

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxPicks bounds locked plus editable picks on one card.
const MaxPicks = 5

type BetKind string

const (
	KindMoneyline BetKind = "MONEYLINE"
	KindSpread    BetKind = "SPREAD"
	KindTotal     BetKind = "TOTAL"
)

func (k BetKind) Valid() bool {
	switch k {
	case KindMoneyline, KindSpread, KindTotal:
		return true
	default:
		return false
	}
}

// RequiresLine reports whether grading reads the captured line.
func (k BetKind) RequiresLine() bool {
	return k == KindSpread || k == KindTotal
}

type Selection string

const (
	SelectionHome  Selection = "HOME"
	SelectionAway  Selection = "AWAY"
	SelectionOver  Selection = "OVER"
	SelectionUnder Selection = "UNDER"
)

// AllowedFor reports whether the selection fits the bet kind.
func (s Selection) AllowedFor(kind BetKind) bool {
	switch kind {
	case KindMoneyline, KindSpread:
		return s == SelectionHome || s == SelectionAway
	case KindTotal:
		return s == SelectionOver || s == SelectionUnder
	default:
		return false
	}
}

type Result string

const (
	ResultPending Result = "PENDING"
	ResultWon     Result = "WON"
	ResultLost    Result = "LOST"
	ResultPush    Result = "PUSH"
)

// Pick is one wager on a card. Line is captured at submission and never
// re-read from the feed.
type Pick struct {
	ID             string
	CardID         string
	GameID         string
	Kind           BetKind
	Selection      Selection
	Line           *decimal.Decimal
	Result         Result
	GradedRevision int
	CreatedAt      time.Time
	GradedAt       *time.Time
}

// SameWager compares the parts of a pick a user chooses.
func (p Pick) SameWager(other Pick) bool {
	if p.GameID != other.GameID || p.Kind != other.Kind || p.Selection != other.Selection {
		return false
	}
	if p.Line == nil || other.Line == nil {
		return p.Line == nil && other.Line == nil
	}
	return p.Line.Equal(*other.Line)
}

// Slot identifies the (game, kind) a pick occupies.
func (p Pick) Slot() string {
	return p.GameID + "/" + string(p.Kind)
}

func (p Pick) ValidateBasic() error {
	if p.GameID == "" {
		return fmt.Errorf("pick game id is required")
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("pick kind %q is invalid", p.Kind)
	}
	if !p.Selection.AllowedFor(p.Kind) {
		return fmt.Errorf("selection %q is not valid for %s", p.Selection, p.Kind)
	}
	if p.Kind.RequiresLine() && p.Line == nil {
		return fmt.Errorf("line is required for %s picks", p.Kind)
	}

	return nil
}

// Key is the natural identity of a card.
type Key struct {
	UserID   string
	LeagueID string
	Week     int
	Year     int
}

func (k Key) String() string {
	return fmt.Sprintf("card:%s:%s:%d:%d", k.LeagueID, k.UserID, k.Year, k.Week)
}

func (k Key) Validate() error {
	if k.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if k.LeagueID == "" {
		return fmt.Errorf("league id is required")
	}
	if k.Week < 1 {
		return fmt.Errorf("week must be >= 1")
	}
	if k.Year <= 0 {
		return fmt.Errorf("year must be > 0")
	}

	return nil
}

// Card holds one user's picks for a league week. TotalScore is derived from
// the picks and can always be recomputed.
type Card struct {
	ID         string
	Key        Key
	TotalScore int
	Picks      []Pick
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Tally counts graded outcomes on the card.
func (c Card) Tally() (wins, losses, pushes int) {
	for _, p := range c.Picks {
		switch p.Result {
		case ResultWon:
			wins++
		case ResultLost:
			losses++
		case ResultPush:
			pushes++
		}
	}
	return wins, losses, pushes
}
