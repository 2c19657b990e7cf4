package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/league"
	"github.com/riskibarqy/pick-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pick-league/internal/platform/cache"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/shopspring/decimal"
)

const testLeagueID = "league-1"

var (
	testLeagueCreated = time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)
	testKickoff       = time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
)

type sequenceIDs struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type harness struct {
	clock      *clockwork.FakeClock
	leagues    *memory.LeagueRepository
	games      *memory.GameRepository
	cards      *memory.CardRepository
	runs       *memory.SettlementRepository
	cache      *cache.Store
	locks      *resilience.KeyedMutex
	ledger     *PickLedgerService
	grader     *GradingService
	aggregator *ScoreAggregatorService
}

// newHarness seeds one league, users u1..u12 and games g1..g8 kicking off at
// testKickoff plus one hour per game index.
func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testKickoff.Add(-48 * time.Hour))
	members := make([]league.Member, 0, 12)
	for i := 1; i <= 12; i++ {
		members = append(members, league.Member{LeagueID: testLeagueID, UserID: fmt.Sprintf("u%02d", i), Role: league.RoleMember})
	}
	leagues := memory.NewLeagueRepository([]league.League{{
		ID:           testLeagueID,
		Name:         "Test League",
		CreatedAt:    testLeagueCreated,
		WeekBoundary: time.Tuesday,
		Location:     time.UTC,
	}, {
		ID:           "league-other",
		Name:         "Other League",
		CreatedAt:    testLeagueCreated,
		WeekBoundary: time.Tuesday,
	}}, members)

	seed := make([]game.Game, 0, 8)
	for i := 1; i <= 8; i++ {
		seed = append(seed, game.Game{
			ID:             fmt.Sprintf("g%d", i),
			LeagueID:       testLeagueID,
			HomeTeam:       fmt.Sprintf("H%d", i),
			AwayTeam:       fmt.Sprintf("A%d", i),
			ScheduledStart: testKickoff.Add(time.Duration(i-1) * time.Hour),
			State:          game.StateScheduled,
		})
	}
	seed = append(seed, game.Game{ID: "g-other", LeagueID: "league-other", ScheduledStart: testKickoff, State: game.StateScheduled})
	games := memory.NewGameRepository(seed)
	cards := memory.NewCardRepository(games)
	store := cache.NewStoreWithClock(time.Minute, clock)
	locks := &resilience.KeyedMutex{}
	logger := logging.NewNop()

	aggregator := NewScoreAggregatorService(cards, locks, store, nil, clock, logger)
	return &harness{
		clock:      clock,
		leagues:    leagues,
		games:      games,
		cards:      cards,
		runs:       memory.NewSettlementRepository(),
		cache:      store,
		locks:      locks,
		ledger:     NewPickLedgerService(leagues, games, cards, &sequenceIDs{prefix: "id"}, locks, aggregator, clock, logger),
		grader:     NewGradingService(cards, aggregator, GradingConfig{Workers: 4}, clock, logger),
		aggregator: aggregator,
	}
}

func (h *harness) finish(t *testing.T, gameID string, home, away int) {
	t.Helper()

	g, ok, err := h.games.GetByID(context.Background(), gameID)
	if err != nil || !ok {
		t.Fatalf("game %s not found: %v", gameID, err)
	}
	g.State = game.StateFinal
	g.Outcome = &game.Outcome{HomeScore: home, AwayScore: away}
	g.Revision++
	h.games.Put(g)
}

func (h *harness) submit(t *testing.T, userID string, picks ...PickInput) card.Card {
	t.Helper()

	saved, err := h.ledger.SubmitOrEditCard(context.Background(), SubmitCardInput{
		UserID:   userID,
		LeagueID: testLeagueID,
		Week:     1,
		Year:     2026,
		Picks:    picks,
	})
	if err != nil {
		t.Fatalf("submit card for %s: %v", userID, err)
	}
	return saved
}

func moneyline(gameID string, side card.Selection) PickInput {
	return PickInput{GameID: gameID, Kind: card.KindMoneyline, Selection: side}
}

func spread(gameID string, side card.Selection, line string) PickInput {
	d := decimal.RequireFromString(line)
	return PickInput{GameID: gameID, Kind: card.KindSpread, Selection: side, Line: &d}
}

func total(gameID string, side card.Selection, line string) PickInput {
	d := decimal.RequireFromString(line)
	return PickInput{GameID: gameID, Kind: card.KindTotal, Selection: side, Line: &d}
}

func (h *harness) gamesByID(t *testing.T, ids ...string) []game.Game {
	t.Helper()

	out, err := h.games.ListByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	return out
}

type fakeFeed struct {
	mu    sync.Mutex
	items []ExternalGame
	err   error
	calls int
	since []time.Time
}

func (f *fakeFeed) FetchGameUpdates(_ context.Context, since time.Time) ([]ExternalGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.since = append(f.since, since)
	if f.err != nil {
		return nil, f.err
	}
	return append([]ExternalGame(nil), f.items...), nil
}

func (f *fakeFeed) set(items ...ExternalGame) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = items
	f.err = nil
}

func intPtr(v int) *int {
	return &v
}
