package game

import "time"

// IsLocked reports whether picks on g are frozen at asOf. It is the only lock
// rule in the system: once the scheduled start has passed or the game has
// left SCHEDULED, it never unlocks.
func IsLocked(g Game, asOf time.Time) bool {
	return !asOf.Before(g.ScheduledStart) || g.State != StateScheduled
}
