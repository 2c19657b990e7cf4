package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                       config.EnvDev,
		ServiceName:                  "pick-league-api",
		HTTPAddr:                     ":0",
		StorageDriver:                config.StorageMemory,
		CacheEnabled:                 true,
		CacheTTL:                     time.Minute,
		CORSAllowedOrigins:           []string{"*"},
		AnubisBaseURL:                "http://127.0.0.1:1",
		AnubisTimeout:                time.Second,
		SettlementFeedTimeout:        time.Second,
		SettlementFeedLookback:       time.Hour,
		SettlementGradingWorkers:     2,
		SettlementRecomputeWorkers:   2,
		SettlementRegradeCorrections: true,
		InternalJobToken:             "job-token",
	}
}

func TestNewContainer_MemoryStorage(t *testing.T) {
	c, err := NewContainer(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Fatalf("close container: %v", err)
		}
	})

	if err := c.StartFeedTrigger(context.Background()); err != nil {
		t.Fatalf("feed trigger without nats should be a no-op: %v", err)
	}

	report, err := c.Settlement.RunSettlementPass(context.Background(), usecase.RunSettlementInput{Trigger: settlement.TriggerManual})
	if err != nil {
		t.Fatalf("run settlement pass: %v", err)
	}
	if report.FeedUnavailable {
		t.Fatalf("disabled feed must not be reported as unavailable")
	}
}

func TestNewHTTPServer_ServesHealthz(t *testing.T) {
	c, err := NewContainer(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer c.Close()

	srv, err := NewHTTPServer(c)
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected healthz response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	c, err := NewContainer(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	defer c.Close()

	if _, err := NewHTTPServer(c); err == nil {
		t.Fatalf("expected error for empty HTTP addr")
	}
}

func TestPointPolicy(t *testing.T) {
	flat := pointPolicy(nil)
	if got := flat(card.Pick{Kind: card.KindSpread}); got != 1 {
		t.Fatalf("flat policy got=%d want=1", got)
	}

	weighted := pointPolicy(map[string]int{"SPREAD": 2, "TOTAL": 3})
	if got := weighted(card.Pick{Kind: card.KindSpread}); got != 2 {
		t.Fatalf("spread got=%d want=2", got)
	}
	if got := weighted(card.Pick{Kind: card.KindMoneyline}); got != 1 {
		t.Fatalf("moneyline got=%d want=1", got)
	}
}

func TestFormatDBQueryForTrace_Truncates(t *testing.T) {
	long := formatDBQueryForTrace("SELECT " + strings.Repeat("x", maxTracedQueryLength*2))
	if len(long) != maxTracedQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(long))
	}
}
