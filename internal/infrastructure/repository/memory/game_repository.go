package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
	now   func() time.Time
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	for _, g := range games {
		items[g.ID] = cloneGame(g)
	}
	return &GameRepository{items: items, now: time.Now}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[gameID]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) ListByIDs(_ context.Context, gameIDs []string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(gameIDs))
	for _, id := range gameIDs {
		if g, ok := r.items[id]; ok {
			out = append(out, cloneGame(g))
		}
	}
	return out, nil
}

func (r *GameRepository) ListByLeague(_ context.Context, leagueID string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.items {
		if g.LeagueID == leagueID {
			out = append(out, cloneGame(g))
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) ListUnsettledFinals(_ context.Context, asOf time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.items {
		if g.NeedsSettlement() && !g.ScheduledStart.After(asOf) {
			out = append(out, cloneGame(g))
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) UpsertFromFeed(_ context.Context, games []game.Game) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	revised := make([]string, 0)
	for _, incoming := range games {
		current := r.items[incoming.ID]
		next, bumped := current.ApplyFeedUpdate(incoming)
		next.UpdatedAt = r.now().UTC()
		r.items[next.ID] = cloneGame(next)
		if bumped {
			revised = append(revised, next.ID)
		}
	}
	return revised, nil
}

func (r *GameRepository) MarkSettled(_ context.Context, gameID string, revision int, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.items[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	if revision > g.SettledRevision {
		g.SettledRevision = revision
		g.UpdatedAt = settledAt.UTC()
		r.items[gameID] = g
	}
	return nil
}

// Put replaces a stored game; tests use it to move games through their
// lifecycle.
func (r *GameRepository) Put(g game.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[g.ID] = cloneGame(g)
}

func cloneGame(g game.Game) game.Game {
	copied := g
	if g.Outcome != nil {
		outcome := *g.Outcome
		copied.Outcome = &outcome
	}
	return copied
}

func sortGames(items []game.Game) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].ScheduledStart.Equal(items[j].ScheduledStart) {
			return items[i].ScheduledStart.Before(items[j].ScheduledStart)
		}
		return items[i].ID < items[j].ID
	})
}
