package game

import "time"

type State string

const (
	StateScheduled  State = "SCHEDULED"
	StateInProgress State = "IN_PROGRESS"
	StateFinal      State = "FINAL"
)

type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

// Outcome carries the final score fields grading needs.
type Outcome struct {
	HomeScore int
	AwayScore int
}

// Winner returns false on a tie.
func (o Outcome) Winner() (Side, bool) {
	switch {
	case o.HomeScore > o.AwayScore:
		return SideHome, true
	case o.AwayScore > o.HomeScore:
		return SideAway, true
	default:
		return "", false
	}
}

func (o Outcome) Total() int {
	return o.HomeScore + o.AwayScore
}

// ScoreFor returns the side's score and its opponent's score.
func (o Outcome) ScoreFor(side Side) (int, int) {
	if side == SideAway {
		return o.AwayScore, o.HomeScore
	}
	return o.HomeScore, o.AwayScore
}

// Game is owned by the odds feed. Revision increases every time a new final
// outcome is recorded, corrections included; SettledRevision trails it until
// every pick on the game has been graded against that outcome.
type Game struct {
	ID              string
	LeagueID        string
	HomeTeam        string
	AwayTeam        string
	ScheduledStart  time.Time
	State           State
	Outcome         *Outcome
	Revision        int
	SettledRevision int
	UpdatedAt       time.Time
}

func (g Game) IsFinal() bool {
	return g.State == StateFinal
}

func (g Game) NeedsSettlement() bool {
	return g.IsFinal() && g.SettledRevision < g.Revision
}

// ApplyFeedUpdate merges a feed snapshot into the stored game and reports
// whether a new final outcome was recorded.
func (g Game) ApplyFeedUpdate(incoming Game) (Game, bool) {
	next := g
	if next.ID == "" {
		next.ID = incoming.ID
	}
	next.HomeTeam = firstNonEmpty(incoming.HomeTeam, g.HomeTeam)
	next.AwayTeam = firstNonEmpty(incoming.AwayTeam, g.AwayTeam)
	if !incoming.ScheduledStart.IsZero() {
		next.ScheduledStart = incoming.ScheduledStart
	}
	if incoming.LeagueID != "" {
		next.LeagueID = incoming.LeagueID
	}

	// Feeds occasionally replay stale live snapshots after the final whistle.
	if g.IsFinal() && !incoming.IsFinal() {
		return next, false
	}

	next.State = incoming.State
	if incoming.Outcome != nil {
		outcome := *incoming.Outcome
		next.Outcome = &outcome
	}

	if !incoming.IsFinal() {
		return next, false
	}
	if g.IsFinal() && sameOutcome(g.Outcome, next.Outcome) {
		return next, false
	}
	next.Revision = g.Revision + 1
	return next, true
}

func sameOutcome(a, b *Outcome) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
