package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	qb "github.com/riskibarqy/pick-league/internal/platform/querybuilder"
)

type GameRepository struct {
	db    *sqlx.DB
	clock clockwork.Clock
}

func NewGameRepository(db *sqlx.DB, clock clockwork.Clock) *GameRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &GameRepository{db: db, clock: clock}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameColumns).From("games").
		Where(qb.Eq("public_id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return gameFromRow(row), true, nil
}

func (r *GameRepository) ListByIDs(ctx context.Context, gameIDs []string) ([]game.Game, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	return listGames(ctx, r.db, "list games by ids", qb.Select(gameColumns).From("games").
		Where(qb.AnyText("public_id", gameIDs)).
		OrderBy("public_id"))
}

func (r *GameRepository) ListByLeague(ctx context.Context, leagueID string) ([]game.Game, error) {
	return listGames(ctx, r.db, "list games by league", qb.Select(gameColumns).From("games").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("scheduled_start", "public_id"))
}

func (r *GameRepository) ListUnsettledFinals(ctx context.Context, asOf time.Time) ([]game.Game, error) {
	return listGames(ctx, r.db, "list unsettled finals", qb.Select(gameColumns).From("games").
		Where(
			qb.Eq("state", string(game.StateFinal)),
			qb.Expr("scheduled_start <= ?", asOf.UTC()),
			qb.Expr("settled_revision < revision"),
		).
		OrderBy("scheduled_start", "public_id"))
}

// UpsertFromFeed merges snapshots under row locks so concurrent intakes never
// bump a revision twice for the same outcome.
func (r *GameRepository) UpsertFromFeed(ctx context.Context, games []game.Game) ([]string, error) {
	if len(games) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx for game upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	current, err := listGames(ctx, tx, "lock feed games", qb.Select(gameColumns).From("games").
		Where(qb.AnyText("public_id", ids)).
		OrderBy("public_id").
		ForUpdate())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]game.Game, len(current))
	for _, g := range current {
		byID[g.ID] = g
	}

	now := r.clock.Now().UTC()
	revised := make([]string, 0)
	for _, incoming := range games {
		next, bumped := byID[incoming.ID].ApplyFeedUpdate(incoming)
		byID[next.ID] = next
		if err := upsertGame(ctx, tx, next, now); err != nil {
			return nil, err
		}
		if bumped {
			revised = append(revised, next.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit game upsert tx: %w", err)
	}
	return revised, nil
}

func (r *GameRepository) MarkSettled(ctx context.Context, gameID string, revision int, settledAt time.Time) error {
	query, args, err := markSettledQuery(gameID, revision, settledAt)
	if err != nil {
		return fmt.Errorf("build mark game settled query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark game settled game=%s: %w", gameID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mark game settled game=%s: no row updated", gameID)
	}
	return nil
}

func listGames(ctx context.Context, q sqlx.QueryerContext, op string, builder *qb.SelectBuilder) ([]game.Game, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []gameTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func upsertGame(ctx context.Context, tx *sqlx.Tx, g game.Game, now time.Time) error {
	home, away := gameScores(g)
	query, args, err := qb.InsertInto("games").
		Columns("public_id", "league_public_id", "home_team", "away_team", "scheduled_start", "state", "home_score", "away_score", "revision", "settled_revision", "updated_at").
		Values(g.ID, g.LeagueID, g.HomeTeam, g.AwayTeam, g.ScheduledStart.UTC(), string(g.State), home, away, g.Revision, g.SettledRevision, now).
		Suffix(`ON CONFLICT (public_id)
DO UPDATE SET
    league_public_id = EXCLUDED.league_public_id,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    scheduled_start = EXCLUDED.scheduled_start,
    state = EXCLUDED.state,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    revision = EXCLUDED.revision,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game=%s: %w", g.ID, err)
	}
	return nil
}

func markSettledQuery(gameID string, revision int, settledAt time.Time) (string, []any, error) {
	return qb.Update("games").
		SetExpr("settled_revision", "GREATEST(settled_revision, ?)", revision).
		Set("updated_at", settledAt.UTC()).
		Where(qb.Eq("public_id", gameID)).
		ToSQL()
}
