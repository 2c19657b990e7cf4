package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/shopspring/decimal"
)

const (
	cardColumns = "public_id, user_id, league_public_id, week, year, total_score, created_at, updated_at"
	pickColumns = "public_id, card_public_id, game_public_id, kind, selection, line, result, graded_revision, created_at, graded_at"
)

type cardTableModel struct {
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	LeaguePublicID string    `db:"league_public_id"`
	Week           int       `db:"week"`
	Year           int       `db:"year"`
	TotalScore     int       `db:"total_score"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type pickTableModel struct {
	PublicID       string              `db:"public_id"`
	CardPublicID   string              `db:"card_public_id"`
	GamePublicID   string              `db:"game_public_id"`
	Kind           string              `db:"kind"`
	Selection      string              `db:"selection"`
	Line           decimal.NullDecimal `db:"line"`
	Result         string              `db:"result"`
	GradedRevision int                 `db:"graded_revision"`
	CreatedAt      time.Time           `db:"created_at"`
	GradedAt       sql.NullTime        `db:"graded_at"`
}

func cardFromRow(row cardTableModel) card.Card {
	return card.Card{
		ID: row.PublicID,
		Key: card.Key{
			UserID:   row.UserID,
			LeagueID: row.LeaguePublicID,
			Week:     row.Week,
			Year:     row.Year,
		},
		TotalScore: row.TotalScore,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func pickFromRow(row pickTableModel) card.Pick {
	p := card.Pick{
		ID:             row.PublicID,
		CardID:         row.CardPublicID,
		GameID:         row.GamePublicID,
		Kind:           card.BetKind(row.Kind),
		Selection:      card.Selection(row.Selection),
		Result:         card.Result(row.Result),
		GradedRevision: row.GradedRevision,
		CreatedAt:      row.CreatedAt,
	}
	if row.Line.Valid {
		line := row.Line.Decimal
		p.Line = &line
	}
	if row.GradedAt.Valid {
		gradedAt := row.GradedAt.Time
		p.GradedAt = &gradedAt
	}
	return p
}

func pickRowFrom(p card.Pick) pickTableModel {
	row := pickTableModel{
		PublicID:       p.ID,
		CardPublicID:   p.CardID,
		GamePublicID:   p.GameID,
		Kind:           string(p.Kind),
		Selection:      string(p.Selection),
		Result:         string(p.Result),
		GradedRevision: p.GradedRevision,
		CreatedAt:      p.CreatedAt.UTC(),
	}
	if row.Result == "" {
		row.Result = string(card.ResultPending)
	}
	if p.Line != nil {
		row.Line = decimal.NullDecimal{Decimal: *p.Line, Valid: true}
	}
	if p.GradedAt != nil {
		row.GradedAt = sql.NullTime{Time: p.GradedAt.UTC(), Valid: true}
	}
	return row
}
