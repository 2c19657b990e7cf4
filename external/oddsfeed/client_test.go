package oddsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

func TestFetchGameUpdates_FollowsPagination(t *testing.T) {
	t.Parallel()

	var gotSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			t.Errorf("unexpected path got=%s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		gotSince = r.URL.Query().Get("updated_since")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"data":[
				{"id":"g1","league_id":"l1","home_team":"KC","away_team":"BAL","starts_at":"2026-09-13T17:00:00Z","status":"final","score":{"home":24,"away":20}},
				{"id":"g2","home_team":"PHI","away_team":"DAL","starts_at":"2026-09-13 20:25:00","status":"in_progress"}
			],"pagination":{"current_page":1,"has_more":true}}`))
		default:
			_, _ = w.Write([]byte(`{"data":[
				{"id":"g2","home_team":"PHI","away_team":"DAL","starts_at":"2026-09-13 20:25:00","status":"final","score":{"home":17,"away":17}},
				{"id":"  ","status":"final"}
			],"pagination":{"current_page":2,"has_more":false}}`))
		}
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret", Logger: logging.NewNop()})
	since := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	games, err := client.FetchGameUpdates(context.Background(), since)
	if err != nil {
		t.Fatalf("fetch game updates: %v", err)
	}
	if gotSince != "2026-09-13T00:00:00Z" {
		t.Fatalf("unexpected updated_since got=%s", gotSince)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games got=%d", len(games))
	}
	if games[0].HomeScore == nil || *games[0].HomeScore != 24 || games[0].Status != "final" {
		t.Fatalf("unexpected first game got=%+v", games[0])
	}
	if games[1].Status != "final" || games[1].AwayScore == nil || *games[1].AwayScore != 17 {
		t.Fatalf("later page should win for repeated game got=%+v", games[1])
	}
	want := time.Date(2026, 9, 13, 20, 25, 0, 0, time.UTC)
	if !games[1].ScheduledStart.Equal(want) {
		t.Fatalf("unexpected start got=%v want=%v", games[1].ScheduledStart, want)
	}
}

func TestFetchGameUpdates_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[],"pagination":{"has_more":false}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 1, Logger: logging.NewNop()})
	games, err := client.FetchGameUpdates(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if len(games) != 0 || calls.Load() != 2 {
		t.Fatalf("unexpected result games=%d calls=%d", len(games), calls.Load())
	}
}

func TestFetchGameUpdates_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3, Logger: logging.NewNop()})
	if _, err := client.FetchGameUpdates(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error for 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt got=%d", calls.Load())
	}
}

func TestFetchGameUpdates_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchGameUpdates(context.Background(), time.Now()); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}
	_, err := client.FetchGameUpdates(context.Background(), time.Now())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit error got=%v", err)
	}
}

func TestParseStart(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"2026-09-13T17:00:00Z":      true,
		"2026-09-13T13:00:00-04:00": true,
		"2026-09-13 17:00:00":       true,
		"":                          false,
		"Sunday":                    false,
	}
	for raw, ok := range cases {
		if _, got := parseStart(raw); got != ok {
			t.Fatalf("parseStart(%q) got=%v want=%v", raw, got, ok)
		}
	}
}
