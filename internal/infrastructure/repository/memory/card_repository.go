package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/game"
)

type gameLister interface {
	ListByIDs(ctx context.Context, gameIDs []string) ([]game.Game, error)
}

type CardRepository struct {
	mu    sync.RWMutex
	items map[string]card.Card
	byKey map[card.Key]string
	games gameLister
}

func NewCardRepository(games gameLister) *CardRepository {
	return &CardRepository{
		items: make(map[string]card.Card),
		byKey: make(map[card.Key]string),
		games: games,
	}
}

func (r *CardRepository) GetByID(_ context.Context, cardID string) (card.Card, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[cardID]
	if !ok {
		return card.Card{}, false, nil
	}
	return cloneCard(c), true, nil
}

func (r *CardRepository) GetByKey(_ context.Context, key card.Key) (card.Card, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cardID, ok := r.byKey[key]
	if !ok {
		return card.Card{}, false, nil
	}
	return cloneCard(r.items[cardID]), true, nil
}

func (r *CardRepository) ListByLeague(_ context.Context, leagueID string) ([]card.Card, error) {
	return r.filter(func(c card.Card) bool { return c.Key.LeagueID == leagueID }), nil
}

func (r *CardRepository) ListByLeagueWeek(_ context.Context, leagueID string, week, year int) ([]card.Card, error) {
	return r.filter(func(c card.Card) bool {
		return c.Key.LeagueID == leagueID && c.Key.Week == week && c.Key.Year == year
	}), nil
}

func (r *CardRepository) ListPicksByGames(_ context.Context, gameIDs []string) ([]card.Pick, error) {
	wanted := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]card.Pick, 0)
	for _, c := range r.items {
		for _, p := range c.Picks {
			if _, ok := wanted[p.GameID]; ok {
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveEdit holds the write lock for the whole edit, which stands in for the
// transaction the postgres repository uses.
func (r *CardRepository) SaveEdit(ctx context.Context, edit card.Edit, guard card.LockGuard) (card.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := card.Card{}, false
	if cardID, ok := r.byKey[edit.Key]; ok {
		current, exists = r.items[cardID], true
	}

	if guard != nil && r.games != nil {
		gameIDs := edit.GameIDs(current.Picks)
		if len(gameIDs) > 0 {
			games, err := r.games.ListByIDs(ctx, gameIDs)
			if err != nil {
				return card.Card{}, fmt.Errorf("list edit games: %w", err)
			}
			if err := guard(games); err != nil {
				return card.Card{}, err
			}
		}
	}

	if !exists {
		current = card.Card{
			ID:        edit.CardID,
			Key:       edit.Key,
			CreatedAt: edit.UpdatedAt,
		}
	}

	removing := make(map[string]struct{}, len(edit.Remove))
	for _, id := range edit.Remove {
		removing[id] = struct{}{}
	}
	picks := make([]card.Pick, 0, len(current.Picks)+len(edit.Insert))
	for _, p := range current.Picks {
		if _, ok := removing[p.ID]; ok {
			continue
		}
		picks = append(picks, p)
	}
	for _, p := range edit.Insert {
		p.CardID = current.ID
		picks = append(picks, p)
	}
	current.Picks = picks
	current.UpdatedAt = edit.UpdatedAt

	r.items[current.ID] = cloneCard(current)
	r.byKey[current.Key] = current.ID
	return cloneCard(current), nil
}

func (r *CardRepository) UpdatePickResults(_ context.Context, results []card.PickResult) error {
	byPick := make(map[string]card.PickResult, len(results))
	for _, res := range results {
		byPick[res.PickID] = res
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for cardID, c := range r.items {
		updated := false
		for i, p := range c.Picks {
			res, ok := byPick[p.ID]
			if !ok {
				continue
			}
			gradedAt := res.GradedAt
			c.Picks[i].Result = res.Result
			c.Picks[i].GradedRevision = res.GradedRevision
			c.Picks[i].GradedAt = &gradedAt
			updated = true
		}
		if updated {
			r.items[cardID] = c
		}
	}
	return nil
}

func (r *CardRepository) UpdateCardScore(_ context.Context, cardID string, score int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[cardID]
	if !ok {
		return fmt.Errorf("card %s not found", cardID)
	}
	c.TotalScore = score
	c.UpdatedAt = updatedAt
	r.items[cardID] = c
	return nil
}

func (r *CardRepository) filter(keep func(card.Card) bool) []card.Card {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]card.Card, 0)
	for _, c := range r.items {
		if keep(c) {
			out = append(out, cloneCard(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneCard(c card.Card) card.Card {
	copied := c
	copied.Picks = make([]card.Pick, len(c.Picks))
	for i, p := range c.Picks {
		copied.Picks[i] = p
		if p.GradedAt != nil {
			gradedAt := *p.GradedAt
			copied.Picks[i].GradedAt = &gradedAt
		}
	}
	return copied
}
