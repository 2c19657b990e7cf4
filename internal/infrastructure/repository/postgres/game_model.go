package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/game"
)

const gameColumns = "public_id, league_public_id, home_team, away_team, scheduled_start, state, home_score, away_score, revision, settled_revision, updated_at"

type gameTableModel struct {
	PublicID        string        `db:"public_id"`
	LeaguePublicID  string        `db:"league_public_id"`
	HomeTeam        string        `db:"home_team"`
	AwayTeam        string        `db:"away_team"`
	ScheduledStart  time.Time     `db:"scheduled_start"`
	State           string        `db:"state"`
	HomeScore       sql.NullInt64 `db:"home_score"`
	AwayScore       sql.NullInt64 `db:"away_score"`
	Revision        int           `db:"revision"`
	SettledRevision int           `db:"settled_revision"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func gameFromRow(row gameTableModel) game.Game {
	g := game.Game{
		ID:              row.PublicID,
		LeagueID:        row.LeaguePublicID,
		HomeTeam:        row.HomeTeam,
		AwayTeam:        row.AwayTeam,
		ScheduledStart:  row.ScheduledStart,
		State:           game.State(row.State),
		Revision:        row.Revision,
		SettledRevision: row.SettledRevision,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.HomeScore.Valid && row.AwayScore.Valid {
		g.Outcome = &game.Outcome{HomeScore: int(row.HomeScore.Int64), AwayScore: int(row.AwayScore.Int64)}
	}
	return g
}

func gameScores(g game.Game) (*int, *int) {
	if g.Outcome == nil {
		return nil, nil
	}
	home, away := g.Outcome.HomeScore, g.Outcome.AwayScore
	return &home, &away
}
