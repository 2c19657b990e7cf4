package postgres

import "time"

type leagueTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Name         string     `db:"name"`
	WeekBoundary int        `db:"week_boundary"`
	TimeZone     string     `db:"time_zone"`
	Privacy      string     `db:"privacy"`
	MaxMembers   int        `db:"max_members"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

type leagueMemberTableModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	JoinedAt       time.Time `db:"joined_at"`
}
