package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/pick-league/external/anubis"
	"github.com/riskibarqy/pick-league/external/oddsfeed"
	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/infrastructure/eventbus"
	"github.com/riskibarqy/pick-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/pick-league/internal/platform/cache"
	"github.com/riskibarqy/pick-league/internal/platform/id"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

// Container owns the wired services and the connections behind them.
type Container struct {
	Config     config.Config
	Clock      clockwork.Clock
	Ledger     *usecase.PickLedgerService
	Aggregator *usecase.ScoreAggregatorService
	Settlement *usecase.SettlementOrchestratorService

	repos  repositories
	nats   *nats.Conn
	logger *logging.Logger
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	clock := clockwork.NewRealClock()

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStoreWithClock(cfg.CacheTTL, clock)
	}

	repos, err := openRepositories(ctx, cfg, store, clock, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Clock:  clock,
		repos:  repos,
		logger: logger,
	}

	var notifier usecase.SettlementNotifier
	if cfg.NATSEnabled {
		conn, err := eventbus.Connect(eventbus.Config{
			URL:               cfg.NATSURL,
			Name:              cfg.ServiceName,
			FeedSubject:       cfg.FeedEventsSubject,
			SettlementSubject: cfg.SettlementEventsSubject,
		}, logger)
		if err != nil {
			_ = repos.close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		c.nats = conn
		notifier = eventbus.NewNotifier(conn, cfg.SettlementEventsSubject)
	}

	var feed usecase.GameFeed
	if cfg.OddsFeedEnabled {
		feed = oddsfeed.NewClient(oddsfeed.ClientConfig{
			HTTPClient:     &http.Client{Timeout: cfg.OddsFeedTimeout},
			BaseURL:        cfg.OddsFeedBaseURL,
			Token:          cfg.OddsFeedToken,
			Timeout:        cfg.OddsFeedTimeout,
			MaxRetries:     cfg.OddsFeedMaxRetries,
			RatePerSecond:  cfg.OddsFeedRatePerSecond,
			Burst:          cfg.OddsFeedBurst,
			Logger:         logger.Named("oddsfeed"),
			Clock:          clock,
			CircuitBreaker: cfg.OddsFeedCircuit,
		})
	} else {
		logger.Info("odds feed disabled", "reason", "ODDS_FEED_ENABLED=false")
	}

	ids := id.NewUUIDGenerator()
	cardLocks := &resilience.KeyedMutex{}

	c.Aggregator = usecase.NewScoreAggregatorService(repos.cards, cardLocks, store, pointPolicy(cfg.ScoringKindPoints), clock, logger.Named("aggregator"))
	c.Ledger = usecase.NewPickLedgerService(repos.leagues, repos.games, repos.cards, ids, cardLocks, c.Aggregator, clock, logger.Named("ledger"))
	grader := usecase.NewGradingService(repos.cards, c.Aggregator, usecase.GradingConfig{Workers: cfg.SettlementGradingWorkers}, clock, logger.Named("grading"))
	c.Settlement = usecase.NewSettlementOrchestratorService(
		repos.games,
		repos.settlements,
		feed,
		grader,
		c.Aggregator,
		notifier,
		ids,
		usecase.SettlementConfig{
			PassTimeout:           cfg.SettlementPassTimeout,
			FeedTimeout:           cfg.SettlementFeedTimeout,
			FeedLookback:          cfg.SettlementFeedLookback,
			RecomputeWorkers:      cfg.SettlementRecomputeWorkers,
			SkipCorrectionRegrade: !cfg.SettlementRegradeCorrections,
		},
		clock,
		logger.Named("settlement"),
	)

	return c, nil
}

// StartFeedTrigger runs settlement passes on feed update messages until ctx is
// done. It is a no-op without NATS.
func (c *Container) StartFeedTrigger(ctx context.Context) error {
	if c.nats == nil {
		c.logger.Info("feed trigger disabled", "reason", "NATS_ENABLED=false")
		return nil
	}
	trigger := eventbus.NewFeedTrigger(c.Settlement, c.Config.SettlementFeedTimeout*4, c.Clock, c.logger.Named("feed_trigger"))
	return trigger.Start(ctx, c.nats, c.Config.FeedEventsSubject)
}

func (c *Container) Close() error {
	var errs []error
	if c.nats != nil {
		if err := c.nats.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("drain nats: %w", err))
		}
	}
	if err := c.repos.close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	return errors.Join(errs...)
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	cfg := c.Config
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	anubisClient := anubis.NewClient(anubis.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.AnubisPrincipalCacheTTL,
		CircuitBreaker: cfg.AnubisCircuit,
		Clock:          c.Clock,
		Logger:         c.logger.Named("anubis"),
	})

	handler := httpapi.NewHandler(c.Ledger, c.Aggregator, c.Settlement, c.Clock, c.logger)
	router := httpapi.NewRouter(handler, anubisClient, httpapi.RouterOptions{
		Logger:             c.logger,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// pointPolicy maps configured kind weights onto a point function. Kinds left
// out of the map score one point per win.
func pointPolicy(kindPoints map[string]int) usecase.PointValueFunc {
	if len(kindPoints) == 0 {
		return usecase.DefaultPointValue
	}
	points := make(map[card.BetKind]int, len(kindPoints))
	for kind, value := range kindPoints {
		points[card.BetKind(kind)] = value
	}
	return usecase.KindPointValue(points)
}
