package oddsfeed

import (
	"strings"
	"time"

	"github.com/riskibarqy/pick-league/internal/usecase"
)

type gamesEnvelope struct {
	Data       []gameItem `json:"data"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	CurrentPage int  `json:"current_page"`
	HasMore     bool `json:"has_more"`
}

type gameItem struct {
	ID       string     `json:"id"`
	LeagueID string     `json:"league_id"`
	HomeTeam string     `json:"home_team"`
	AwayTeam string     `json:"away_team"`
	StartsAt string     `json:"starts_at"`
	Status   string     `json:"status"`
	Score    *scoreItem `json:"score"`
}

type scoreItem struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (g gameItem) toExternal() (usecase.ExternalGame, bool) {
	id := strings.TrimSpace(g.ID)
	if id == "" {
		return usecase.ExternalGame{}, false
	}
	out := usecase.ExternalGame{
		ID:       id,
		LeagueID: strings.TrimSpace(g.LeagueID),
		HomeTeam: strings.TrimSpace(g.HomeTeam),
		AwayTeam: strings.TrimSpace(g.AwayTeam),
		Status:   strings.TrimSpace(g.Status),
	}
	if start, ok := parseStart(g.StartsAt); ok {
		out.ScheduledStart = start
	}
	if g.Score != nil {
		out.HomeScore = g.Score.Home
		out.AwayScore = g.Score.Away
	}
	return out, true
}

// parseStart accepts RFC3339 and the provider's legacy "YYYY-MM-DD HH:MM:SS"
// UTC form.
func parseStart(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
