package standings

import "testing"

func TestRankingPoints(t *testing.T) {
	t.Parallel()

	cases := map[int]int{1: 10, 2: 9, 10: 1, 11: 1, 50: 1}
	for rank, want := range cases {
		if got := RankingPoints(rank); got != want {
			t.Fatalf("unexpected points for rank %d: got=%d want=%d", rank, got, want)
		}
	}
}

func TestWinRate(t *testing.T) {
	t.Parallel()

	if got := WinRate(0, 0); got != 0 {
		t.Fatalf("unexpected win rate: got=%v want=0", got)
	}
	if got := WinRate(3, 1); got != 0.75 {
		t.Fatalf("unexpected win rate: got=%v want=0.75", got)
	}
}
