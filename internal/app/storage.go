package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/league"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	cacherepo "github.com/riskibarqy/pick-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pick-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pick-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pick-league/internal/platform/cache"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	leagues     league.Repository
	games       game.Repository
	cards       card.Repository
	settlements settlement.Repository
	db          *sqlx.DB
}

func (r repositories) close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// openRepositories builds the storage layer for cfg.StorageDriver. League reads
// go through the cache decorator when caching is on.
func openRepositories(ctx context.Context, cfg config.Config, store *cache.Store, clock clockwork.Clock, logger *logging.Logger) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		repos = repositories{
			leagues:     postgres.NewLeagueRepository(db),
			games:       postgres.NewGameRepository(db, clock),
			cards:       postgres.NewCardRepository(db),
			settlements: postgres.NewSettlementRunRepository(db),
			db:          db,
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))
	default:
		games := memory.NewGameRepository(memory.SeedGames())
		repos = repositories{
			leagues:     memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers()),
			games:       games,
			cards:       memory.NewCardRepository(games),
			settlements: memory.NewSettlementRepository(),
		}
		logger.Info("storage ready", "driver", config.StorageMemory)
	}

	if cfg.CacheEnabled && store != nil {
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
	}
	return repos, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := applyDSNOptions(cfg.DBURL, dsnOptions{
		BinaryParameters: cfg.DBBinaryParameters,
		ApplicationName:  cfg.DBApplicationName,
	})

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
