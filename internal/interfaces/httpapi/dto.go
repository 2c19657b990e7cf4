package httpapi

import (
	"time"

	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

const timeLayout = time.RFC3339

type pickDTO struct {
	ID        string  `json:"id"`
	GameID    string  `json:"game_id"`
	Kind      string  `json:"kind"`
	Selection string  `json:"selection"`
	Line      *string `json:"line,omitempty"`
	Result    string  `json:"result"`
	Locked    bool    `json:"locked"`
	GradedAt  *string `json:"graded_at,omitempty"`
}

type cardDTO struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	LeagueID          string    `json:"league_id"`
	Week              int       `json:"week"`
	Year              int       `json:"year"`
	TotalScore        int       `json:"total_score"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	Pushes            int       `json:"pushes"`
	LockedCount       int       `json:"locked_count"`
	RemainingCapacity int       `json:"remaining_capacity"`
	Picks             []pickDTO `json:"picks"`
	UpdatedAt         string    `json:"updated_at"`
}

type weekInfoDTO struct {
	LeagueID string `json:"league_id"`
	Week     int    `json:"week"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

type standingEntryDTO struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	CardID      string  `json:"card_id,omitempty"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	WinRate     float64 `json:"win_rate"`
	Points      int     `json:"points"`
	WeeksPlayed int     `json:"weeks_played,omitempty"`
}

type settlementRunDTO struct {
	RunID            string               `json:"run_id"`
	Trigger          string               `json:"trigger"`
	StartedAt        string               `json:"started_at"`
	FinishedAt       string               `json:"finished_at"`
	DurationMS       int64                `json:"duration_ms"`
	FeedUnavailable  bool                 `json:"feed_unavailable"`
	FeedIngestFailed bool                 `json:"feed_ingest_failed"`
	FeedGames        int                  `json:"feed_games"`
	GamesConsidered  int                  `json:"games_considered"`
	GamesSettled     int                  `json:"games_settled"`
	PicksGraded      int                  `json:"picks_graded"`
	PicksChanged     int                  `json:"picks_changed"`
	CardsUpdated     int                  `json:"cards_updated"`
	Skipped          []settlement.Skipped `json:"skipped"`
	Errors           []string             `json:"errors"`
}

func cardViewToDTO(view usecase.CardView) cardDTO {
	wins, losses, pushes := view.Card.Tally()
	picks := make([]pickDTO, 0, len(view.Picks))
	for _, p := range view.Picks {
		item := pickDTO{
			ID:        p.ID,
			GameID:    p.GameID,
			Kind:      string(p.Kind),
			Selection: string(p.Selection),
			Result:    string(p.Result),
			Locked:    p.Locked,
		}
		if p.Line != nil {
			line := p.Line.String()
			item.Line = &line
		}
		if p.GradedAt != nil {
			gradedAt := p.GradedAt.UTC().Format(timeLayout)
			item.GradedAt = &gradedAt
		}
		picks = append(picks, item)
	}

	return cardDTO{
		ID:                view.Card.ID,
		UserID:            view.Card.Key.UserID,
		LeagueID:          view.Card.Key.LeagueID,
		Week:              view.Card.Key.Week,
		Year:              view.Card.Key.Year,
		TotalScore:        view.Card.TotalScore,
		Wins:              wins,
		Losses:            losses,
		Pushes:            pushes,
		LockedCount:       view.LockedCount,
		RemainingCapacity: view.RemainingCapacity,
		Picks:             picks,
		UpdatedAt:         view.Card.UpdatedAt.UTC().Format(timeLayout),
	}
}

func settlementRunToDTO(run settlement.Run) settlementRunDTO {
	skipped := run.Skipped
	if skipped == nil {
		skipped = []settlement.Skipped{}
	}
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}

	return settlementRunDTO{
		RunID:            run.RunID,
		Trigger:          string(run.Trigger),
		StartedAt:        run.StartedAt.UTC().Format(timeLayout),
		FinishedAt:       run.FinishedAt.UTC().Format(timeLayout),
		DurationMS:       run.Duration().Milliseconds(),
		FeedUnavailable:  run.FeedUnavailable,
		FeedIngestFailed: run.FeedIngestFailed,
		FeedGames:        run.FeedGames,
		GamesConsidered:  run.GamesConsidered,
		GamesSettled:     run.GamesSettled,
		PicksGraded:      run.PicksGraded,
		PicksChanged:     run.PicksChanged,
		CardsUpdated:     run.CardsUpdated,
		Skipped:          skipped,
		Errors:           errs,
	}
}
