package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
)

// ExternalGame is a game snapshot as reported by the odds feed.
type ExternalGame struct {
	ID             string
	LeagueID       string
	HomeTeam       string
	AwayTeam       string
	ScheduledStart time.Time
	Status         string
	HomeScore      *int
	AwayScore      *int
}

type GameFeed interface {
	FetchGameUpdates(ctx context.Context, since time.Time) ([]ExternalGame, error)
}

type SettlementNotifier interface {
	PublishRun(ctx context.Context, run settlement.Run) error
}

type noopSettlementNotifier struct{}

func (noopSettlementNotifier) PublishRun(context.Context, settlement.Run) error {
	return nil
}

func NewNoopSettlementNotifier() SettlementNotifier {
	return noopSettlementNotifier{}
}

func (e ExternalGame) toGame() game.Game {
	state, playable := game.NormalizeState(e.Status)
	out := game.Game{
		ID:             strings.TrimSpace(e.ID),
		LeagueID:       strings.TrimSpace(e.LeagueID),
		HomeTeam:       strings.TrimSpace(e.HomeTeam),
		AwayTeam:       strings.TrimSpace(e.AwayTeam),
		ScheduledStart: e.ScheduledStart,
		State:          state,
	}
	if playable && e.HomeScore != nil && e.AwayScore != nil {
		out.Outcome = &game.Outcome{HomeScore: *e.HomeScore, AwayScore: *e.AwayScore}
	}
	return out
}
