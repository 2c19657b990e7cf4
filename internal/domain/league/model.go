package league

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "PUBLIC"
	PrivacyPrivate Privacy = "PRIVATE"
)

// DefaultWeekBoundary is the weekday new leagues roll over on.
const DefaultWeekBoundary = time.Tuesday

// League is a group of players competing on weekly cards.
type League struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	WeekBoundary time.Weekday
	Location     *time.Location
	Privacy      Privacy
	MaxMembers   int
}

type Member struct {
	LeagueID string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CreatedAt.IsZero() {
		return fmt.Errorf("league creation time is required")
	}
	if l.WeekBoundary < time.Sunday || l.WeekBoundary > time.Saturday {
		return fmt.Errorf("league week boundary %d is not a weekday", l.WeekBoundary)
	}

	return nil
}

// Zone defaults to UTC when the league has no location.
func (l League) Zone() *time.Location {
	if l.Location == nil {
		return time.UTC
	}
	return l.Location
}

// CurrentWeek is the league-relative week number at now.
func (l League) CurrentWeek(now time.Time) int {
	return CurrentWeek(l.CreatedAt, now, l.WeekBoundary, l.Zone())
}
