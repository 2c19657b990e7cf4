package game

import (
	"testing"
	"time"
)

func TestIsLocked(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	scheduled := Game{ID: "g1", ScheduledStart: start, State: StateScheduled}

	tests := []struct {
		name string
		game Game
		asOf time.Time
		want bool
	}{
		{name: "before kickoff", game: scheduled, asOf: start.Add(-time.Nanosecond), want: false},
		{name: "exactly kickoff", game: scheduled, asOf: start, want: true},
		{name: "after kickoff", game: scheduled, asOf: start.Add(time.Hour), want: true},
		{name: "started early", game: Game{ScheduledStart: start, State: StateInProgress}, asOf: start.Add(-time.Hour), want: true},
		{name: "final", game: Game{ScheduledStart: start, State: StateFinal}, asOf: start.Add(-24 * time.Hour), want: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsLocked(tc.game, tc.asOf); got != tc.want {
				t.Fatalf("unexpected lock state: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestIsLocked_Monotonic(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	states := []State{StateScheduled, StateInProgress, StateFinal}
	for _, state := range states {
		g := Game{ScheduledStart: start, State: state}
		locked := false
		for offset := -3 * time.Hour; offset <= 3*time.Hour; offset += 7 * time.Minute {
			now := IsLocked(g, start.Add(offset))
			if locked && !now {
				t.Fatalf("lock regressed for state=%s at offset=%s", state, offset)
			}
			locked = now
		}
		if !locked {
			t.Fatalf("expected state=%s to be locked after kickoff", state)
		}
	}
}

func TestNormalizeState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		want     State
		playable bool
	}{
		{raw: "", want: StateScheduled, playable: true},
		{raw: "postponed", want: StateScheduled, playable: true},
		{raw: " HT ", want: StateInProgress, playable: true},
		{raw: "FT_PEN", want: StateFinal, playable: true},
		{raw: "cancelled", want: StateFinal, playable: false},
	}
	for _, tc := range tests {
		got, playable := NormalizeState(tc.raw)
		if got != tc.want || playable != tc.playable {
			t.Fatalf("unexpected state for %q: got=%s/%v want=%s/%v", tc.raw, got, playable, tc.want, tc.playable)
		}
	}
}

func TestApplyFeedUpdate_Revisions(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	stored := Game{ID: "g1", ScheduledStart: start, State: StateScheduled}

	live, changed := stored.ApplyFeedUpdate(Game{ID: "g1", State: StateInProgress, Outcome: &Outcome{HomeScore: 7}})
	if changed || live.Revision != 0 {
		t.Fatalf("live update must not bump revision: changed=%v revision=%d", changed, live.Revision)
	}

	final, changed := live.ApplyFeedUpdate(Game{ID: "g1", State: StateFinal, Outcome: &Outcome{HomeScore: 24, AwayScore: 21}})
	if !changed || final.Revision != 1 {
		t.Fatalf("final must bump revision: changed=%v revision=%d", changed, final.Revision)
	}

	replay, changed := final.ApplyFeedUpdate(Game{ID: "g1", State: StateFinal, Outcome: &Outcome{HomeScore: 24, AwayScore: 21}})
	if changed || replay.Revision != 1 {
		t.Fatalf("identical final must be a no-op: changed=%v revision=%d", changed, replay.Revision)
	}

	stale, changed := final.ApplyFeedUpdate(Game{ID: "g1", State: StateInProgress, Outcome: &Outcome{HomeScore: 21, AwayScore: 21}})
	if changed || stale.State != StateFinal || stale.Outcome.HomeScore != 24 {
		t.Fatalf("stale live snapshot must not reopen a final game: %+v", stale)
	}

	corrected, changed := final.ApplyFeedUpdate(Game{ID: "g1", State: StateFinal, Outcome: &Outcome{HomeScore: 24, AwayScore: 27}})
	if !changed || corrected.Revision != 2 {
		t.Fatalf("correction must bump revision: changed=%v revision=%d", changed, corrected.Revision)
	}
	if !corrected.NeedsSettlement() {
		t.Fatalf("corrected game should need settlement")
	}
}
