package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/standings"
)

func TestScoreAggregatorService_RecomputeCardIsPure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	saved := h.submit(t, "u01",
		moneyline("g1", card.SelectionHome),
		spread("g2", card.SelectionAway, "3.5"),
		total("g3", card.SelectionUnder, "45.0"),
		moneyline("g4", card.SelectionHome),
	)
	h.finish(t, "g1", 21, 14)
	h.finish(t, "g2", 24, 22)
	h.finish(t, "g3", 24, 21)
	h.finish(t, "g4", 3, 7)
	if _, err := h.grader.GradePicks(context.Background(), h.gamesByID(t, "g1", "g2", "g3", "g4")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := h.aggregator.RecomputeCard(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := h.aggregator.RecomputeCard(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 2 || second != first {
		t.Fatalf("unexpected scores: first=%d second=%d want=2", first, second)
	}

	stored, _, _ := h.cards.GetByID(context.Background(), saved.ID)
	if stored.TotalScore != ScoreCard(stored.Picks, DefaultPointValue) {
		t.Fatalf("stored score drifted from picks: got=%d", stored.TotalScore)
	}
}

func TestKindPointValue(t *testing.T) {
	t.Parallel()

	value := KindPointValue(map[card.BetKind]int{card.KindSpread: 2, card.KindTotal: 3})
	picks := []card.Pick{
		{Kind: card.KindMoneyline, Result: card.ResultWon},
		{Kind: card.KindSpread, Result: card.ResultWon},
		{Kind: card.KindTotal, Result: card.ResultPush},
		{Kind: card.KindTotal, Result: card.ResultLost},
	}
	if got := ScoreCard(picks, value); got != 3 {
		t.Fatalf("unexpected weighted score: got=%d want=3", got)
	}
}

func weekCard(userID string, week, score int, results ...card.Result) card.Card {
	picks := make([]card.Pick, 0, len(results))
	for i, r := range results {
		picks = append(picks, card.Pick{ID: fmt.Sprintf("%s-w%d-p%d", userID, week, i), Kind: card.KindMoneyline, Result: r})
	}
	return card.Card{
		ID:         fmt.Sprintf("%s-w%d", userID, week),
		Key:        card.Key{UserID: userID, LeagueID: testLeagueID, Week: week, Year: 2026},
		TotalScore: score,
		Picks:      picks,
	}
}

func TestRankWeek_TiesBreakOnUserID(t *testing.T) {
	t.Parallel()

	entries := rankWeek([]card.Card{
		weekCard("u03", 1, 10),
		weekCard("u01", 1, 10),
		weekCard("u02", 1, 12),
	})
	want := []string{"u02", "u01", "u03"}
	for i, e := range entries {
		if e.UserID != want[i] || e.Rank != i+1 {
			t.Fatalf("unexpected entry %d: got=%s rank=%d want=%s rank=%d", i, e.UserID, e.Rank, want[i], i+1)
		}
	}
}

func TestRankAllTime_RankingPointsFloorAtOne(t *testing.T) {
	t.Parallel()

	cards := []card.Card{weekCard("u12", 1, 10)}
	for i := 1; i <= 10; i++ {
		cards = append(cards, weekCard(fmt.Sprintf("u%02d", i), 2, 10))
	}
	// u12 scores zero in week two and finishes eleventh.
	cards = append(cards, weekCard("u12", 2, 0))

	entries, err := rankAllTime(context.Background(), cards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var target standings.Entry
	for _, e := range entries {
		if e.UserID == "u12" {
			target = e
		}
	}
	if target.Points != 11 || target.WeeksPlayed != 2 {
		t.Fatalf("unexpected all-time entry: points=%d weeks=%d want points=11 weeks=2", target.Points, target.WeeksPlayed)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Fatalf("ranks must be distinct and dense: entry %d rank=%d", i, e.Rank)
		}
	}
}

func TestRankAllTime_WinRateExcludesPushes(t *testing.T) {
	t.Parallel()

	entries, err := rankAllTime(context.Background(), []card.Card{
		weekCard("u01", 1, 1, card.ResultWon, card.ResultPush, card.ResultLost),
		weekCard("u01", 2, 0, card.ResultPush, card.ResultLost, card.ResultPending),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := entries[0]
	if e.Wins != 1 || e.Losses != 2 || e.Pushes != 2 {
		t.Fatalf("unexpected tallies: %+v", e)
	}
	if e.WinRate != 1.0/3.0 {
		t.Fatalf("unexpected win rate: got=%v want=%v", e.WinRate, 1.0/3.0)
	}
}

func TestRankAllTime_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rankAllTime(ctx, []card.Card{weekCard("u01", 1, 1)}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestScoreAggregatorService_StandingsCacheInvalidatedOnTouch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	a := h.submit(t, "u01", moneyline("g1", card.SelectionHome))
	b := h.submit(t, "u02", moneyline("g1", card.SelectionAway))

	before, err := h.aggregator.WeeklyStandings(context.Background(), testLeagueID, 1, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before[0].UserID != "u01" {
		t.Fatalf("unexpected leader on tie: got=%s want=u01", before[0].UserID)
	}

	h.finish(t, "g1", 3, 10)
	if _, err := h.grader.GradePicks(context.Background(), h.gamesByID(t, "g1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		if _, err := h.aggregator.RecomputeCard(context.Background(), id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	after, err := h.aggregator.WeeklyStandings(context.Background(), testLeagueID, 1, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after[0].UserID != "u02" || after[0].Points != 1 || after[0].CardID != b.ID {
		t.Fatalf("stale standings served after recompute: %+v", after)
	}

	allTime, err := h.aggregator.AllTimeStandings(context.Background(), testLeagueID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allTime[0].UserID != "u02" || allTime[0].Points != 10 || allTime[1].Points != 9 {
		t.Fatalf("unexpected all-time standings: %+v", allTime)
	}
}

func TestScoreAggregatorService_StandingsReturnCopies(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.submit(t, "u01", moneyline("g1", card.SelectionHome))

	first, _ := h.aggregator.WeeklyStandings(context.Background(), testLeagueID, 1, 2026)
	first[0].UserID = "mutated"
	second, _ := h.aggregator.WeeklyStandings(context.Background(), testLeagueID, 1, 2026)
	if second[0].UserID != "u01" {
		t.Fatalf("cached standings were mutated by caller: got=%s", second[0].UserID)
	}
}
