package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/platform/id"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const settlementFlightKey = "settlement-pass"

type SettlementConfig struct {
	// PassTimeout bounds one shared pass. The pass is detached from the
	// callers' contexts, so this is its only deadline.
	PassTimeout      time.Duration
	FeedTimeout      time.Duration
	FeedLookback     time.Duration
	RecomputeWorkers int
	// SkipCorrectionRegrade marks corrected finals settled without regrading
	// picks that were already graded once.
	SkipCorrectionRegrade bool
}

type RunSettlementInput struct {
	Now     time.Time
	Trigger settlement.Trigger
}

type SettlementReport = settlement.Run

type SettlementOrchestratorService struct {
	gameRepo       game.Repository
	settlementRepo settlement.Repository
	feed           GameFeed
	grader         *GradingService
	aggregator     *ScoreAggregatorService
	notifier       SettlementNotifier
	ids            id.Generator
	cfg            SettlementConfig
	flight         resilience.SingleFlight
	clock          clockwork.Clock
	logger         *logging.Logger
}

func NewSettlementOrchestratorService(
	gameRepo game.Repository,
	settlementRepo settlement.Repository,
	feed GameFeed,
	grader *GradingService,
	aggregator *ScoreAggregatorService,
	notifier SettlementNotifier,
	ids id.Generator,
	cfg SettlementConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *SettlementOrchestratorService {
	if notifier == nil {
		notifier = NewNoopSettlementNotifier()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 15 * time.Second
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = 5 * time.Minute
	}
	if cfg.FeedLookback <= 0 {
		cfg.FeedLookback = 24 * time.Hour
	}
	if cfg.RecomputeWorkers <= 0 {
		cfg.RecomputeWorkers = 8
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SettlementOrchestratorService{
		gameRepo:       gameRepo,
		settlementRepo: settlementRepo,
		feed:           feed,
		grader:         grader,
		aggregator:     aggregator,
		notifier:       notifier,
		ids:            ids,
		cfg:            cfg,
		clock:          clock,
		logger:         logger,
	}
}

// RunSettlementPass grades newly final games and re-derives every card they
// touch. Concurrent callers share one in-flight pass, which runs with the
// first caller's input but outlives its ctx. Per-game and per-card failures
// land in the report; an error is returned only when the pass could not run
// at all or ctx ended while waiting on a shared pass.
func (s *SettlementOrchestratorService) RunSettlementPass(ctx context.Context, input RunSettlementInput) (SettlementReport, error) {
	passCtx := context.WithoutCancel(ctx)
	value, err, shared := s.flight.DoContext(ctx, settlementFlightKey, func() (any, error) {
		runCtx, cancel := context.WithTimeout(passCtx, s.cfg.PassTimeout)
		defer cancel()
		return s.runPass(runCtx, input)
	})
	if err != nil {
		return SettlementReport{}, err
	}
	report, ok := value.(SettlementReport)
	if !ok {
		return SettlementReport{}, fmt.Errorf("unexpected settlement result %T", value)
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight settlement pass", "run_id", report.RunID)
	}
	return report, nil
}

func (s *SettlementOrchestratorService) GetRun(ctx context.Context, runID string) (settlement.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementOrchestratorService.GetRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return settlement.Run{}, fmt.Errorf("%w: run_id is required", ErrInvalidInput)
	}
	run, exists, err := s.settlementRepo.GetRun(ctx, runID)
	if err != nil {
		return settlement.Run{}, fmt.Errorf("get settlement run: %w", err)
	}
	if !exists {
		return settlement.Run{}, fmt.Errorf("%w: settlement run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (s *SettlementOrchestratorService) runPass(ctx context.Context, input RunSettlementInput) (SettlementReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementOrchestratorService.RunSettlementPass",
		attribute.String("pick.settlement_trigger", string(input.Trigger)))
	defer span.End()

	now := input.Now
	if now.IsZero() {
		now = s.clock.Now()
	}
	trigger := input.Trigger
	if trigger == "" {
		trigger = settlement.TriggerManual
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return SettlementReport{}, fmt.Errorf("generate run id: %w", err)
	}
	ctx = logging.ContextWith(ctx, "run_id", runID, "trigger", string(trigger))
	report := SettlementReport{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: s.clock.Now().UTC(),
		Skipped:   []settlement.Skipped{},
		Errors:    []string{},
	}

	s.intakeFeed(ctx, now, &report)

	candidates, err := s.gameRepo.ListUnsettledFinals(ctx, now)
	if err != nil {
		return SettlementReport{}, fmt.Errorf("list unsettled finals: %w", err)
	}
	report.GamesConsidered = len(candidates)

	toGrade := make([]game.Game, 0, len(candidates))
	for _, g := range candidates {
		if s.cfg.SkipCorrectionRegrade && g.SettledRevision > 0 {
			report.Skipped = append(report.Skipped, settlement.Skipped{GameID: g.ID, Reason: settlement.SkipRegradeOff})
			s.markSettled(ctx, g, &report)
			continue
		}
		toGrade = append(toGrade, g)
	}

	graded, err := s.grader.GradePicks(ctx, toGrade)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		s.logger.WarnContext(ctx, "grading batch failed", "error", err)
	}
	report.PicksGraded = len(graded.Graded)
	report.PicksChanged = graded.Changed
	for _, gameID := range graded.SkippedGameIDs {
		report.Skipped = append(report.Skipped, settlement.Skipped{GameID: gameID, Reason: settlement.SkipNotFinal})
	}
	for _, failure := range graded.Failures {
		report.Skipped = append(report.Skipped, settlement.Skipped{
			GameID: failure.GameID,
			PickID: failure.PickID,
			Reason: settlement.SkipUngradeable,
			Detail: failure.Err.Error(),
		})
	}

	// Every card graded on a candidate is re-derived, not only the changed
	// ones, so a recompute lost on an earlier pass is repaired here.
	updated, failedCards := s.recomputeCards(ctx, graded.GradedCardIDs, &report)
	report.CardsUpdated = updated

	blocked := gamesOnCards(graded.Graded, failedCards)
	for _, g := range graded.SettledGames {
		if _, ok := blocked[g.ID]; ok {
			report.Skipped = append(report.Skipped, settlement.Skipped{GameID: g.ID, Reason: settlement.SkipRecomputeFailed})
			continue
		}
		s.markSettled(ctx, g, &report)
	}

	report.FinishedAt = s.clock.Now().UTC()
	s.persist(ctx, report)

	s.logger.InfoContext(ctx, "settlement pass finished",
		"feed_unavailable", report.FeedUnavailable,
		"feed_ingest_failed", report.FeedIngestFailed,
		"games_considered", report.GamesConsidered,
		"games_settled", report.GamesSettled,
		"picks_graded", report.PicksGraded,
		"picks_changed", report.PicksChanged,
		"cards_updated", report.CardsUpdated,
		"skipped", len(report.Skipped),
		"errors", len(report.Errors),
		"duration_ms", report.Duration().Milliseconds(),
	)
	return report, nil
}

// intakeFeed pulls fresh snapshots. A feed failure means nothing new arrived
// this pass.
func (s *SettlementOrchestratorService) intakeFeed(ctx context.Context, now time.Time, report *SettlementReport) {
	if s.feed == nil {
		return
	}

	// Resume from the last pass that stored everything the feed returned,
	// never further back than the lookback window.
	since := now.Add(-s.cfg.FeedLookback)
	if s.settlementRepo != nil {
		last, ok, err := s.settlementRepo.LatestRun(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "read latest settlement run failed", "error", err)
		} else if ok && last.FeedComplete() && last.StartedAt.After(since) {
			since = last.StartedAt
		}
	}

	feedCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedTimeout)
	defer cancel()

	items, err := s.feed.FetchGameUpdates(feedCtx, since)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
		report.FeedUnavailable = true
		report.Errors = append(report.Errors, err.Error())
		s.logger.WarnContext(ctx, "game feed unavailable, settling stored games", "error", err)
		return
	}
	report.FeedGames = len(items)
	if len(items) == 0 {
		return
	}

	games := make([]game.Game, 0, len(items))
	for _, item := range items {
		g := item.toGame()
		if g.ID == "" {
			continue
		}
		games = append(games, g)
	}
	revised, err := s.gameRepo.UpsertFromFeed(ctx, games)
	if err != nil {
		report.FeedIngestFailed = true
		report.Errors = append(report.Errors, fmt.Sprintf("upsert feed games: %v", err))
		s.logger.WarnContext(ctx, "store feed games failed", "error", err)
		return
	}
	if len(revised) > 0 {
		s.logger.InfoContext(ctx, "feed recorded final outcomes", "games", len(revised))
	}
}

type recomputeOutcome struct {
	cardID string
	err    error
}

// recomputeCards returns the number of cards re-derived and the ids of those
// that failed.
func (s *SettlementOrchestratorService) recomputeCards(ctx context.Context, cardIDs []string, report *SettlementReport) (int, map[string]struct{}) {
	failed := make(map[string]struct{})
	if len(cardIDs) == 0 || s.aggregator == nil {
		return 0, failed
	}

	p := pool.NewWithResults[recomputeOutcome]().WithMaxGoroutines(s.cfg.RecomputeWorkers)
	for _, cardID := range cardIDs {
		cardID := cardID
		p.Go(func() recomputeOutcome {
			_, err := s.aggregator.RecomputeCard(ctx, cardID)
			return recomputeOutcome{cardID: cardID, err: err}
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].cardID < outcomes[j].cardID
	})

	updated := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed[o.cardID] = struct{}{}
			report.Errors = append(report.Errors, fmt.Sprintf("recompute card %s: %v", o.cardID, o.err))
			s.logger.WarnContext(ctx, "recompute card failed", "card_id", o.cardID, "error", o.err)
			continue
		}
		updated++
	}
	return updated, failed
}

// gamesOnCards lists the games holding a graded pick on any of cardIDs.
func gamesOnCards(graded []GradedPick, cardIDs map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	if len(cardIDs) == 0 {
		return out
	}
	for _, g := range graded {
		if _, ok := cardIDs[g.CardID]; ok {
			out[g.GameID] = struct{}{}
		}
	}
	return out
}

func (s *SettlementOrchestratorService) markSettled(ctx context.Context, g game.Game, report *SettlementReport) {
	if err := s.gameRepo.MarkSettled(ctx, g.ID, g.Revision, s.clock.Now()); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("mark game %s settled: %v", g.ID, err))
		s.logger.WarnContext(ctx, "mark game settled failed", "game_id", g.ID, "error", err)
		return
	}
	report.GamesSettled++
}

func (s *SettlementOrchestratorService) persist(ctx context.Context, report SettlementReport) {
	if s.settlementRepo != nil {
		if err := s.settlementRepo.SaveRun(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "record settlement run failed", "error", err)
		}
	}
	if err := s.notifier.PublishRun(ctx, report); err != nil {
		s.logger.WarnContext(ctx, "publish settlement run failed", "error", err)
	}
}
