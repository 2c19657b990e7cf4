package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pick-league/internal/domain/league"
	qb "github.com/riskibarqy/pick-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	query, args, err := qb.Select("league_public_id", "user_id", "role", "joined_at").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return league.Member{}, false, fmt.Errorf("build get league member query: %w", err)
	}

	var row leagueMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Member{}, false, nil
		}
		return league.Member{}, false, fmt.Errorf("get league member: %w", err)
	}

	return memberFromRow(row), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	query, args, err := qb.Select("league_public_id", "user_id", "role", "joined_at").From("league_members").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	loc, err := time.LoadLocation(row.TimeZone)
	if err != nil || row.TimeZone == "" {
		loc = time.UTC
	}
	return league.League{
		ID:           row.PublicID,
		Name:         row.Name,
		CreatedAt:    row.CreatedAt,
		WeekBoundary: time.Weekday(row.WeekBoundary),
		Location:     loc,
		Privacy:      league.Privacy(row.Privacy),
		MaxMembers:   row.MaxMembers,
	}
}

func memberFromRow(row leagueMemberTableModel) league.Member {
	return league.Member{
		LeagueID: row.LeaguePublicID,
		UserID:   row.UserID,
		Role:     league.Role(row.Role),
		JoinedAt: row.JoinedAt,
	}
}
