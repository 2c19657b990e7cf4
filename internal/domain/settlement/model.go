package settlement

import "time"

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerFeed     Trigger = "feed_event"
	TriggerManual   Trigger = "manual"
)

type SkipReason string

const (
	SkipNotFinal        SkipReason = "not_final"
	SkipUngradeable     SkipReason = "ungradeable_outcome"
	SkipRegradeOff      SkipReason = "regrade_disabled"
	SkipRecomputeFailed SkipReason = "recompute_failed"
)

type Skipped struct {
	GameID string     `json:"game_id"`
	PickID string     `json:"pick_id,omitempty"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Run is the persisted report of one settlement pass.
type Run struct {
	RunID            string    `json:"run_id"`
	Trigger          Trigger   `json:"trigger"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	FeedUnavailable  bool      `json:"feed_unavailable"`
	// FeedIngestFailed is set when the feed answered but its games could not
	// be stored.
	FeedIngestFailed bool      `json:"feed_ingest_failed"`
	FeedGames        int       `json:"feed_games"`
	GamesConsidered  int       `json:"games_considered"`
	GamesSettled     int       `json:"games_settled"`
	PicksGraded      int       `json:"picks_graded"`
	PicksChanged     int       `json:"picks_changed"`
	CardsUpdated     int       `json:"cards_updated"`
	Skipped          []Skipped `json:"skipped"`
	Errors           []string  `json:"errors"`
}

// FeedComplete reports whether the pass read the feed and stored everything
// it returned. Only such runs may move the next feed window forward.
func (r Run) FeedComplete() bool {
	return !r.FeedUnavailable && !r.FeedIngestFailed
}

func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
