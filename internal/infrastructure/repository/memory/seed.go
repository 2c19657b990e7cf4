package memory

import (
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/league"
)

const (
	LeagueIDSundaySharps = "sunday-sharps-2026"
	LeagueIDOfficePool   = "office-pool-2026"

	UserIDOwner  = "user-owner"
	UserIDMember = "user-member"
)

var seedCreatedAt = time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:           LeagueIDSundaySharps,
			Name:         "Sunday Sharps",
			CreatedAt:    seedCreatedAt,
			WeekBoundary: league.DefaultWeekBoundary,
			Location:     time.UTC,
			Privacy:      league.PrivacyPrivate,
			MaxMembers:   20,
		},
		{
			ID:           LeagueIDOfficePool,
			Name:         "Office Pool",
			CreatedAt:    seedCreatedAt,
			WeekBoundary: league.DefaultWeekBoundary,
			Location:     time.UTC,
			Privacy:      league.PrivacyPublic,
			MaxMembers:   50,
		},
	}
}

func SeedMembers() []league.Member {
	return []league.Member{
		{LeagueID: LeagueIDSundaySharps, UserID: UserIDOwner, Role: league.RoleOwner, JoinedAt: seedCreatedAt},
		{LeagueID: LeagueIDSundaySharps, UserID: UserIDMember, Role: league.RoleMember, JoinedAt: seedCreatedAt},
		{LeagueID: LeagueIDOfficePool, UserID: UserIDOwner, Role: league.RoleOwner, JoinedAt: seedCreatedAt},
	}
}

func SeedGames() []game.Game {
	kickoff := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	return []game.Game{
		{ID: "nfl-2026-w1-kc-bal", LeagueID: LeagueIDSundaySharps, HomeTeam: "KC", AwayTeam: "BAL", ScheduledStart: kickoff, State: game.StateScheduled},
		{ID: "nfl-2026-w1-phi-dal", LeagueID: LeagueIDSundaySharps, HomeTeam: "PHI", AwayTeam: "DAL", ScheduledStart: kickoff, State: game.StateScheduled},
		{ID: "nfl-2026-w1-sf-det", LeagueID: LeagueIDSundaySharps, HomeTeam: "SF", AwayTeam: "DET", ScheduledStart: kickoff.Add(3 * time.Hour), State: game.StateScheduled},
		{ID: "nfl-2026-w1-buf-mia", LeagueID: LeagueIDSundaySharps, HomeTeam: "BUF", AwayTeam: "MIA", ScheduledStart: kickoff.Add(27 * time.Hour), State: game.StateScheduled},
	}
}
