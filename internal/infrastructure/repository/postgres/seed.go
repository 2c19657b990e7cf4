package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pick-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo leagues and slate into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO leagues (public_id, name, week_boundary, time_zone, privacy, max_members, created_at)
VALUES (:public_id, :name, :week_boundary, :time_zone, :privacy, :max_members, :created_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":     l.ID,
			"name":          l.Name,
			"week_boundary": int(l.WeekBoundary),
			"time_zone":     l.Zone().String(),
			"privacy":       string(l.Privacy),
			"max_members":   l.MaxMembers,
			"created_at":    l.CreatedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, m := range memory.SeedMembers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO league_members (league_public_id, user_id, role, joined_at)
VALUES (:league_public_id, :user_id, :role, :joined_at)
ON CONFLICT (league_public_id, user_id) DO NOTHING`, map[string]any{
			"league_public_id": m.LeagueID,
			"user_id":          m.UserID,
			"role":             string(m.Role),
			"joined_at":        m.JoinedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed member %s/%s query: %w", m.LeagueID, m.UserID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed member %s/%s: %w", m.LeagueID, m.UserID, err)
		}
	}

	for _, g := range memory.SeedGames() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO games (public_id, league_public_id, home_team, away_team, scheduled_start, state)
VALUES (:public_id, :league_public_id, :home_team, :away_team, :scheduled_start, :state)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        g.ID,
			"league_public_id": g.LeagueID,
			"home_team":        g.HomeTeam,
			"away_team":        g.AwayTeam,
			"scheduled_start":  g.ScheduledStart.UTC(),
			"state":            string(g.State),
		})
		if err != nil {
			return fmt.Errorf("bind seed game %s query: %w", g.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
