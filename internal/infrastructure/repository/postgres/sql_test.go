package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(sql.ErrNoRows))
	assert.True(t, isNotFound(fmt.Errorf("get card: %w", sql.ErrNoRows)))
	assert.False(t, isNotFound(fmt.Errorf("pq: relation cards does not exist")))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches unique code", func(t *testing.T) {
		err := fmt.Errorf("insert pick: %w", &pq.Error{Code: "23505"})
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("ignores other codes", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
		assert.False(t, isUniqueViolation(fmt.Errorf("plain")))
	})
}

func TestGameFromRowOutcome(t *testing.T) {
	row := gameTableModel{
		PublicID:  "g1",
		State:     "FINAL",
		HomeScore: sql.NullInt64{Int64: 24, Valid: true},
		AwayScore: sql.NullInt64{Int64: 20, Valid: true},
		Revision:  2,
	}
	g := gameFromRow(row)
	require.NotNil(t, g.Outcome)
	assert.Equal(t, 24, g.Outcome.HomeScore)
	assert.Equal(t, 20, g.Outcome.AwayScore)

	row.AwayScore = sql.NullInt64{}
	assert.Nil(t, gameFromRow(row).Outcome)

	home, away := gameScores(g)
	require.NotNil(t, home)
	require.NotNil(t, away)
	assert.Equal(t, 24, *home)
	assert.Equal(t, 20, *away)
}

func TestPickRowRoundTrip(t *testing.T) {
	line := decimal.RequireFromString("-3.5")
	gradedAt := time.Date(2026, 9, 14, 3, 0, 0, 0, time.UTC)
	p := card.Pick{
		ID:             "p1",
		CardID:         "c1",
		GameID:         "g1",
		Kind:           card.KindSpread,
		Selection:      card.SelectionHome,
		Line:           &line,
		Result:         card.ResultWon,
		GradedRevision: 1,
		GradedAt:       &gradedAt,
	}

	got := pickFromRow(pickRowFrom(p))
	require.NotNil(t, got.Line)
	assert.True(t, got.Line.Equal(line))
	assert.True(t, p.SameWager(got))
	require.NotNil(t, got.GradedAt)
	assert.True(t, got.GradedAt.Equal(gradedAt))

	p.Kind, p.Selection, p.Line = card.KindMoneyline, card.SelectionAway, nil
	got = pickFromRow(pickRowFrom(p))
	assert.Nil(t, got.Line)
}

func TestLeagueFromRowFallsBackToUTC(t *testing.T) {
	l := leagueFromRow(leagueTableModel{PublicID: "l1", TimeZone: "Mars/Olympus", WeekBoundary: 2})
	assert.Equal(t, time.UTC, l.Location)
	assert.Equal(t, time.Tuesday, l.WeekBoundary)

	l = leagueFromRow(leagueTableModel{PublicID: "l1", TimeZone: "America/New_York"})
	assert.Equal(t, "America/New_York", l.Location.String())
}

func TestSettlementRunRowRoundTrip(t *testing.T) {
	started := time.Date(2026, 9, 14, 4, 0, 0, 0, time.UTC)
	run := settlement.Run{
		RunID:            "run-1",
		Trigger:          settlement.TriggerSchedule,
		StartedAt:        started,
		FinishedAt:       started.Add(2 * time.Second),
		FeedIngestFailed: true,
		PicksGraded:      4,
		CardsUpdated:     2,
		Skipped: []settlement.Skipped{
			{GameID: "g7", Reason: settlement.SkipUngradeable, Detail: "missing outcome"},
		},
	}

	row, err := settlementRunRowFrom(run)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(row.Errors))

	got, err := settlementRunFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, run.Skipped, got.Skipped)
	assert.Empty(t, got.Errors)
	assert.Equal(t, 2*time.Second, got.Duration())
	assert.Equal(t, 4, got.PicksGraded)
	assert.True(t, got.FeedIngestFailed)
	assert.False(t, got.FeedComplete())
}

func TestMarkSettledQueryStampsGivenTime(t *testing.T) {
	settledAt := time.Date(2026, 9, 14, 6, 30, 0, 0, time.FixedZone("EDT", -4*3600))

	query, args, err := markSettledQuery("g1", 3, settledAt)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE games SET settled_revision = GREATEST(settled_revision, $1), updated_at = $2 WHERE public_id = $3", query)
	require.Len(t, args, 3)
	assert.Equal(t, 3, args[0])
	assert.Equal(t, settledAt.UTC(), args[1])
	assert.Equal(t, "g1", args[2])
}
