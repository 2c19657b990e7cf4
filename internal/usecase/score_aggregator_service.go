package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/standings"
	"github.com/riskibarqy/pick-league/internal/platform/cache"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// PointValueFunc scores one won pick.
type PointValueFunc func(p card.Pick) int

func DefaultPointValue(card.Pick) int {
	return 1
}

// KindPointValue weights wins by bet kind. Kinds missing from points score 1.
func KindPointValue(points map[card.BetKind]int) PointValueFunc {
	weights := make(map[card.BetKind]int, len(points))
	for kind, value := range points {
		weights[kind] = value
	}
	return func(p card.Pick) int {
		if value, ok := weights[p.Kind]; ok {
			return value
		}
		return 1
	}
}

type ScoreAggregatorService struct {
	cardRepo   card.Repository
	cardLocks  *resilience.KeyedMutex
	cache      *cache.Store
	pointValue PointValueFunc
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewScoreAggregatorService(
	cardRepo card.Repository,
	cardLocks *resilience.KeyedMutex,
	cacheStore *cache.Store,
	pointValue PointValueFunc,
	clock clockwork.Clock,
	logger *logging.Logger,
) *ScoreAggregatorService {
	if cardLocks == nil {
		cardLocks = &resilience.KeyedMutex{}
	}
	if pointValue == nil {
		pointValue = DefaultPointValue
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoreAggregatorService{
		cardRepo:   cardRepo,
		cardLocks:  cardLocks,
		cache:      cacheStore,
		pointValue: pointValue,
		clock:      clock,
		logger:     logger,
	}
}

// ScoreCard sums the point value of won picks. Pushes and losses add nothing.
func ScoreCard(picks []card.Pick, pointValue PointValueFunc) int {
	if pointValue == nil {
		pointValue = DefaultPointValue
	}
	total := 0
	for _, p := range picks {
		if p.Result == card.ResultWon {
			total += pointValue(p)
		}
	}
	return total
}

// RecomputeCard re-derives the card total from its picks and stores it.
func (s *ScoreAggregatorService) RecomputeCard(ctx context.Context, cardID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreAggregatorService.RecomputeCard", attribute.String("pick.card_id", cardID))
	defer span.End()

	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return 0, fmt.Errorf("%w: card_id is required", ErrInvalidInput)
	}

	item, exists, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return 0, fmt.Errorf("get card by id: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: card=%s", ErrNotFound, cardID)
	}

	unlock, err := s.cardLocks.Lock(ctx, item.Key.String())
	if err != nil {
		return 0, fmt.Errorf("acquire card lock: %w", err)
	}
	defer unlock()

	// Re-read under the lock so a concurrent edit is not scored stale.
	item, exists, err = s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return 0, fmt.Errorf("get card by id: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: card=%s", ErrNotFound, cardID)
	}

	score := ScoreCard(item.Picks, s.pointValue)
	if score != item.TotalScore {
		if err := s.cardRepo.UpdateCardScore(ctx, cardID, score, s.clock.Now()); err != nil {
			return 0, fmt.Errorf("update card score: %w", err)
		}
	}
	s.InvalidateLeague(ctx, item.Key.LeagueID)
	return score, nil
}

func (s *ScoreAggregatorService) WeeklyStandings(ctx context.Context, leagueID string, week, year int) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreAggregatorService.WeeklyStandings",
		attribute.String("pick.league_id", leagueID), attribute.Int("pick.week", week), attribute.Int("pick.year", year))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if week < 1 || year <= 0 {
		return nil, fmt.Errorf("%w: week must be >= 1 and year > 0", ErrInvalidInput)
	}

	key := fmt.Sprintf("%sweekly:%d:%d", standingsCachePrefix(leagueID), year, week)
	return s.cached(ctx, key, func(ctx context.Context) ([]standings.Entry, error) {
		cards, err := s.cardRepo.ListByLeagueWeek(ctx, leagueID, week, year)
		if err != nil {
			return nil, fmt.Errorf("list cards by league week: %w", err)
		}
		return rankWeek(cards), nil
	})
}

func (s *ScoreAggregatorService) AllTimeStandings(ctx context.Context, leagueID string) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreAggregatorService.AllTimeStandings", attribute.String("pick.league_id", leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	return s.cached(ctx, standingsCachePrefix(leagueID)+"all-time", func(ctx context.Context) ([]standings.Entry, error) {
		cards, err := s.cardRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("list cards by league: %w", err)
		}
		return rankAllTime(ctx, cards)
	})
}

// InvalidateLeague drops every cached leaderboard for the league.
func (s *ScoreAggregatorService) InvalidateLeague(ctx context.Context, leagueID string) {
	if s.cache == nil || leagueID == "" {
		return
	}
	s.cache.DeletePrefix(ctx, standingsCachePrefix(leagueID))
}

func (s *ScoreAggregatorService) cached(
	ctx context.Context,
	key string,
	load func(context.Context) ([]standings.Entry, error),
) ([]standings.Entry, error) {
	if s.cache == nil {
		return load(ctx)
	}

	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]standings.Entry)
	if !ok {
		return nil, fmt.Errorf("unexpected standings cache value %T", value)
	}
	return append([]standings.Entry(nil), entries...), nil
}

func standingsCachePrefix(leagueID string) string {
	return "standings:" + leagueID + ":"
}

// rankWeek orders cards by score then user id, giving every card a distinct
// rank.
func rankWeek(cards []card.Card) []standings.Entry {
	entries := make([]standings.Entry, 0, len(cards))
	for _, c := range cards {
		wins, losses, pushes := c.Tally()
		entries = append(entries, standings.Entry{
			UserID:  c.Key.UserID,
			CardID:  c.ID,
			Wins:    wins,
			Losses:  losses,
			Pushes:  pushes,
			WinRate: standings.WinRate(wins, losses),
			Points:  c.TotalScore,
		})
	}
	assignRanks(entries)
	return entries
}

type weekKey struct {
	year int
	week int
}

func rankAllTime(ctx context.Context, cards []card.Card) ([]standings.Entry, error) {
	groups := make(map[weekKey][]card.Card)
	for _, c := range cards {
		k := weekKey{year: c.Key.Year, week: c.Key.Week}
		groups[k] = append(groups[k], c)
	}

	totals := make(map[string]*standings.Entry)
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, row := range rankWeek(group) {
			entry, ok := totals[row.UserID]
			if !ok {
				entry = &standings.Entry{UserID: row.UserID}
				totals[row.UserID] = entry
			}
			entry.Points += standings.RankingPoints(row.Rank)
			entry.Wins += row.Wins
			entry.Losses += row.Losses
			entry.Pushes += row.Pushes
			entry.WeeksPlayed++
		}
	}

	entries := make([]standings.Entry, 0, len(totals))
	for _, entry := range totals {
		entry.WinRate = standings.WinRate(entry.Wins, entry.Losses)
		entries = append(entries, *entry)
	}
	assignRanks(entries)
	return entries, nil
}

func assignRanks(entries []standings.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
