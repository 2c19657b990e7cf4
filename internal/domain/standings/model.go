package standings

// Entry is one ranked row of a leaderboard. It is derived on read and never
// stored.
type Entry struct {
	UserID      string
	CardID      string
	Wins        int
	Losses      int
	Pushes      int
	WinRate     float64
	Points      int
	WeeksPlayed int
	Rank        int
}

// WinRate excludes pushes and is zero when nothing has been decided.
func WinRate(wins, losses int) float64 {
	decided := wins + losses
	if decided == 0 {
		return 0
	}
	return float64(wins) / float64(decided)
}

// RankingPoints converts a weekly rank into all-time points: 10 for first,
// one fewer per place, never below 1.
func RankingPoints(rank int) int {
	points := 10 - (rank - 1)
	if points < 1 {
		return 1
	}
	return points
}
