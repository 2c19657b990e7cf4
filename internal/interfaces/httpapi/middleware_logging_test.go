package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogging_RecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.FromZap(zap.New(core))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/cards/{cardID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/c1", nil)
	RequestLogging(logger, mux).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entry count: got=%d want=1", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected level: %s", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "GET /v1/cards/{cardID}" {
		t.Fatalf("unexpected route field: %v", fields["route"])
	}
	if fields["path"] != "/v1/cards/c1" {
		t.Fatalf("unexpected path field: %v", fields["path"])
	}
}

func TestRequestLogging_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		status int
		want   zapcore.Level
	}{
		{status: http.StatusNoContent, want: zapcore.InfoLevel},
		{status: http.StatusConflict, want: zapcore.WarnLevel},
		{status: http.StatusServiceUnavailable, want: zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := logging.FromZap(zap.New(core))
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			w.WriteHeader(http.StatusOK)
		})

		RequestLogging(logger, next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("status %d: unexpected entry count %d", tc.status, len(entries))
		}
		if entries[0].Level != tc.want {
			t.Fatalf("status %d: got level %s want %s", tc.status, entries[0].Level, tc.want)
		}
		if got := entries[0].ContextMap()["status"]; got != int64(tc.status) {
			t.Fatalf("status %d: unexpected status field %v", tc.status, got)
		}
	}
}
