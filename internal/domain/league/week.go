package league

import "time"

const daysPerWeek = 7

// WeekAnchor returns local midnight of the first boundary weekday on or after
// createdAt. A league created exactly at a boundary midnight anchors there.
func WeekAnchor(createdAt time.Time, boundary time.Weekday, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := createdAt.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	offset := (int(boundary) - int(midnight.Weekday()) + daysPerWeek) % daysPerWeek
	if offset == 0 && local.After(midnight) {
		offset = daysPerWeek
	}
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day()+offset, 0, 0, 0, 0, loc)
}

// WeekInterval returns [start, end) of week n. Arithmetic is in calendar days
// so a DST change never shifts the boundary off local midnight.
func WeekInterval(anchor time.Time, n int) (time.Time, time.Time) {
	if n < 1 {
		n = 1
	}
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day()+(n-1)*daysPerWeek, 0, 0, 0, 0, anchor.Location())
	end := time.Date(anchor.Year(), anchor.Month(), anchor.Day()+n*daysPerWeek, 0, 0, 0, 0, anchor.Location())
	return start, end
}

// CurrentWeek counts whole weeks elapsed since the anchor, plus one. Any time
// before the anchor (including the days between creation and the first
// boundary) is week 1.
func CurrentWeek(createdAt, now time.Time, boundary time.Weekday, loc *time.Location) int {
	anchor := WeekAnchor(createdAt, boundary, loc)
	if now.Before(anchor) {
		return 1
	}

	local := now.In(anchor.Location())
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, anchor.Location())
	days := civilDaysBetween(anchor, today)
	return days/daysPerWeek + 1
}

// civilDaysBetween counts calendar days from a to b, both local midnights.
func civilDaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
