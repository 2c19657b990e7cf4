package game

import (
	"context"
	"time"
)

// Repository exposes game reads plus the feed write-back used by settlement.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	ListByIDs(ctx context.Context, gameIDs []string) ([]Game, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Game, error)
	// ListUnsettledFinals returns final games started at or before asOf whose
	// latest outcome revision has not been fully graded.
	ListUnsettledFinals(ctx context.Context, asOf time.Time) ([]Game, error)
	// UpsertFromFeed stores feed snapshots and returns the ids that received a
	// new final outcome revision.
	UpsertFromFeed(ctx context.Context, games []Game) ([]string, error)
	MarkSettled(ctx context.Context, gameID string, revision int, settledAt time.Time) error
}
