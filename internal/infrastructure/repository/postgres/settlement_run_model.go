package postgres

import (
	"database/sql"
	"time"
)

const settlementRunColumns = "run_id, trigger, started_at, finished_at, feed_unavailable, feed_ingest_failed, feed_games, games_considered, games_settled, picks_graded, picks_changed, cards_updated, skipped, errors, trace_id"

type settlementRunTableModel struct {
	RunID            string         `db:"run_id"`
	Trigger          string         `db:"trigger,insertonly"`
	StartedAt        time.Time      `db:"started_at,insertonly"`
	FinishedAt       time.Time      `db:"finished_at"`
	FeedUnavailable  bool           `db:"feed_unavailable"`
	FeedIngestFailed bool           `db:"feed_ingest_failed"`
	FeedGames        int            `db:"feed_games"`
	GamesConsidered  int            `db:"games_considered"`
	GamesSettled     int            `db:"games_settled"`
	PicksGraded      int            `db:"picks_graded"`
	PicksChanged     int            `db:"picks_changed"`
	CardsUpdated     int            `db:"cards_updated"`
	Skipped          []byte         `db:"skipped"`
	Errors           []byte         `db:"errors"`
	TraceID          sql.NullString `db:"trace_id,keep"`
}
