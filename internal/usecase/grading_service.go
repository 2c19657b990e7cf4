package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultGradingWorkers = 8

type GradingConfig struct {
	Workers int
}

type GradedPick struct {
	PickID   string      `json:"pick_id"`
	CardID   string      `json:"card_id"`
	GameID   string      `json:"game_id"`
	Previous card.Result `json:"previous"`
	Result   card.Result `json:"result"`
	Revision int         `json:"revision"`
}

func (g GradedPick) Changed() bool {
	return g.Previous != g.Result
}

type PickFailure struct {
	PickID string
	CardID string
	GameID string
	Err    error
}

type GradingResult struct {
	Graded  []GradedPick
	Written int
	Changed int
	// TouchedCardIDs are the cards with a pick whose result changed.
	TouchedCardIDs []string
	// GradedCardIDs are the cards with any cleanly graded pick in the batch,
	// changed or not.
	GradedCardIDs []string
	Failures      []PickFailure
	SkippedGameIDs []string
	// SettledGames are the final games whose every pick graded cleanly.
	SettledGames []game.Game
}

type GradingService struct {
	cardRepo  card.Repository
	standings standingsInvalidator
	cfg       GradingConfig
	clock     clockwork.Clock
	logger    *logging.Logger
}

func NewGradingService(
	cardRepo card.Repository,
	standings standingsInvalidator,
	cfg GradingConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *GradingService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultGradingWorkers
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &GradingService{
		cardRepo:  cardRepo,
		standings: standings,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}
}

type gradeOutcome struct {
	pick   card.Pick
	game   game.Game
	result card.Result
	err    error
}

// GradePicks grades every pick on the final games in the batch. Re-running
// against the same outcomes writes nothing.
func (s *GradingService) GradePicks(ctx context.Context, games []game.Game) (GradingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GradingService.GradePicks", attribute.Int("pick.games", len(games)))
	defer span.End()

	result := GradingResult{}
	finals := make(map[string]game.Game, len(games))
	finalIDs := make([]string, 0, len(games))
	for _, g := range games {
		if !g.IsFinal() {
			result.SkippedGameIDs = append(result.SkippedGameIDs, g.ID)
			continue
		}
		if _, ok := finals[g.ID]; ok {
			continue
		}
		finals[g.ID] = g
		finalIDs = append(finalIDs, g.ID)
	}
	if len(finalIDs) == 0 {
		return result, nil
	}

	picks, err := s.cardRepo.ListPicksByGames(ctx, finalIDs)
	if err != nil {
		return GradingResult{}, fmt.Errorf("list picks by games: %w", err)
	}

	outcomes, err := s.evaluate(ctx, picks, finals)
	if err != nil {
		return GradingResult{}, err
	}

	gradedAt := s.clock.Now()
	failedGames := make(map[string]struct{})
	touched := make(map[string]struct{})
	gradedCards := make(map[string]struct{})
	touchedLeagues := make(map[string]struct{})
	writes := make([]card.PickResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			failedGames[o.game.ID] = struct{}{}
			result.Failures = append(result.Failures, PickFailure{PickID: o.pick.ID, CardID: o.pick.CardID, GameID: o.game.ID, Err: o.err})
			s.logger.WarnContext(ctx, "pick not gradeable",
				"pick_id", o.pick.ID,
				"game_id", o.game.ID,
				"error", o.err,
			)
			continue
		}

		graded := GradedPick{
			PickID:   o.pick.ID,
			CardID:   o.pick.CardID,
			GameID:   o.game.ID,
			Previous: o.pick.Result,
			Result:   o.result,
			Revision: o.game.Revision,
		}
		result.Graded = append(result.Graded, graded)
		gradedCards[o.pick.CardID] = struct{}{}
		if o.pick.Result == o.result && o.pick.GradedRevision == o.game.Revision {
			continue
		}
		writes = append(writes, card.PickResult{
			PickID:         o.pick.ID,
			Result:         o.result,
			GradedRevision: o.game.Revision,
			GradedAt:       gradedAt,
		})
		if graded.Changed() {
			result.Changed++
			touched[o.pick.CardID] = struct{}{}
			touchedLeagues[o.game.LeagueID] = struct{}{}
		}
	}

	if len(writes) > 0 {
		if err := s.cardRepo.UpdatePickResults(ctx, writes); err != nil {
			return GradingResult{}, fmt.Errorf("update pick results: %w", err)
		}
	}
	result.Written = len(writes)

	for cardID := range touched {
		result.TouchedCardIDs = append(result.TouchedCardIDs, cardID)
	}
	sort.Strings(result.TouchedCardIDs)
	for cardID := range gradedCards {
		result.GradedCardIDs = append(result.GradedCardIDs, cardID)
	}
	sort.Strings(result.GradedCardIDs)

	for _, gameID := range finalIDs {
		if _, failed := failedGames[gameID]; failed {
			continue
		}
		result.SettledGames = append(result.SettledGames, finals[gameID])
	}

	if s.standings != nil {
		for leagueID := range touchedLeagues {
			if leagueID != "" {
				s.standings.InvalidateLeague(ctx, leagueID)
			}
		}
	}
	return result, nil
}

func (s *GradingService) evaluate(ctx context.Context, picks []card.Pick, games map[string]game.Game) ([]gradeOutcome, error) {
	if len(picks) == 0 {
		return nil, nil
	}

	workers := s.cfg.Workers
	if workers > len(picks) {
		workers = len(picks)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create grading pool: %w", err)
	}
	defer pool.Release()

	results := make(chan gradeOutcome, len(picks))
	var wg sync.WaitGroup
	for _, p := range picks {
		p := p
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			g := games[p.GameID]
			if ctx.Err() != nil {
				results <- gradeOutcome{pick: p, game: g, err: ctx.Err()}
				return
			}
			res, err := card.Grade(p, g)
			results <- gradeOutcome{pick: p, game: g, result: res, err: err}
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit grading task: %w", err)
		}
	}
	wg.Wait()
	close(results)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("grade picks: %w", err)
	}

	out := make([]gradeOutcome, 0, len(picks))
	for o := range results {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].pick.ID < out[j].pick.ID
	})
	return out, nil
}
