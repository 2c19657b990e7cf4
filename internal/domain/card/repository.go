package card

import (
	"context"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/game"
)

// LockGuard re-checks lock state against the games as stored at write time.
// Returning an error aborts the edit.
type LockGuard func(games []game.Game) error

// Edit replaces the editable picks on a card. Locked picks are left alone.
type Edit struct {
	CardID    string
	Key       Key
	Remove    []string
	Insert    []Pick
	UpdatedAt time.Time
}

// GameIDs lists every game the edit deletes or inserts a pick for, given the
// picks currently on the card.
func (e Edit) GameIDs(current []Pick) []string {
	removing := make(map[string]struct{}, len(e.Remove))
	for _, id := range e.Remove {
		removing[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(e.Remove)+len(e.Insert))
	add := func(gameID string) {
		if _, ok := seen[gameID]; ok {
			return
		}
		seen[gameID] = struct{}{}
		out = append(out, gameID)
	}
	for _, p := range current {
		if _, ok := removing[p.ID]; ok {
			add(p.GameID)
		}
	}
	for _, p := range e.Insert {
		add(p.GameID)
	}
	return out
}

// PickResult is a graded pick write.
type PickResult struct {
	PickID         string
	Result         Result
	GradedRevision int
	GradedAt       time.Time
}

type Repository interface {
	GetByID(ctx context.Context, cardID string) (Card, bool, error)
	GetByKey(ctx context.Context, key Key) (Card, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Card, error)
	ListByLeagueWeek(ctx context.Context, leagueID string, week, year int) ([]Card, error)
	ListPicksByGames(ctx context.Context, gameIDs []string) ([]Pick, error)
	// SaveEdit upserts the card by key and applies the edit in one
	// transaction. guard runs inside that transaction after the affected games
	// are locked for update.
	SaveEdit(ctx context.Context, edit Edit, guard LockGuard) (Card, error)
	UpdatePickResults(ctx context.Context, results []PickResult) error
	UpdateCardScore(ctx context.Context, cardID string, score int, updatedAt time.Time) error
}
