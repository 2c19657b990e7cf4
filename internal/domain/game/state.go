package game

import "strings"

// NormalizeState maps provider status vocabulary onto the three lifecycle
// states. The second value is false for codes that mean the game will not be
// played as scheduled but has not been rescheduled either.
func NormalizeState(raw string) (State, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "NS", "TBD", "SCHEDULED", "POSTPONED", "DELAYED":
		return StateScheduled, true
	case "LIVE", "IN_PLAY", "IN_PROGRESS", "1H", "2H", "HT", "Q1", "Q2", "Q3", "Q4", "OT", "ET", "BREAK":
		return StateInProgress, true
	case "FT", "AET", "PEN", "FT_PEN", "FINISHED", "FINAL", "F/OT", "CLOSED":
		return StateFinal, true
	case "CANCELLED", "CANCELED", "ABANDONED", "AWARDED", "WO":
		return StateFinal, false
	default:
		return StateScheduled, true
	}
}
