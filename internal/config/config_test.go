package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "pick-league-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "pick-league-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBConnectionOptions(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DB_BINARY_PARAMETERS", "")
		t.Setenv("DB_APPLICATION_NAME", "")
		t.Setenv("APP_SERVICE_NAME", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBBinaryParameters {
			t.Fatalf("expected DBBinaryParameters=true by default")
		}
		if cfg.DBApplicationName != "pick-league-api" {
			t.Fatalf("expected application name to follow service name, got %q", cfg.DBApplicationName)
		}
	})

	t.Run("explicit application name", func(t *testing.T) {
		t.Setenv("DB_APPLICATION_NAME", "pick-league-worker")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DBApplicationName != "pick-league-worker" {
			t.Fatalf("unexpected application name: %q", cfg.DBApplicationName)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_BINARY_PARAMETERS", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_BINARY_PARAMETERS")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults to memory", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageMemory {
			t.Fatalf("unexpected storage driver: got=%q want=%q", cfg.StorageDriver, StorageMemory)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_OddsFeedRequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ODDS_FEED_ENABLED", "true")
	t.Setenv("ODDS_FEED_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ODDS_FEED_ENABLED=true without ODDS_FEED_BASE_URL")
	}
}

func TestLoad_CircuitBreakerPerClient(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ODDS_FEED_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("ODDS_FEED_CIRCUIT_OPEN_TIMEOUT", "45s")
	t.Setenv("ANUBIS_CIRCUIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OddsFeedCircuit.FailureThreshold != 3 || cfg.OddsFeedCircuit.OpenTimeout != 45*time.Second {
		t.Fatalf("unexpected odds feed circuit: %+v", cfg.OddsFeedCircuit)
	}
	if !cfg.OddsFeedCircuit.Enabled {
		t.Fatalf("expected odds feed circuit enabled by default")
	}
	if cfg.AnubisCircuit.Enabled {
		t.Fatalf("expected anubis circuit disabled")
	}
	if cfg.AnubisCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected anubis failure threshold: got=%d want=5", cfg.AnubisCircuit.FailureThreshold)
	}

	t.Setenv("ODDS_FEED_CIRCUIT_HALF_OPEN_MAX_REQ", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for ODDS_FEED_CIRCUIT_HALF_OPEN_MAX_REQ=0")
	}
}

func TestLoad_SettlementDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SettlementFeedTimeout != 15*time.Second {
		t.Fatalf("unexpected feed timeout: %s", cfg.SettlementFeedTimeout)
	}
	if cfg.SettlementPassTimeout != 5*time.Minute {
		t.Fatalf("unexpected pass timeout: %s", cfg.SettlementPassTimeout)
	}
	if cfg.SettlementFeedLookback != 24*time.Hour {
		t.Fatalf("unexpected feed lookback: %s", cfg.SettlementFeedLookback)
	}
	if !cfg.SettlementRegradeCorrections {
		t.Fatalf("expected correction regrades enabled by default")
	}
	if len(cfg.ScoringKindPoints) != 0 {
		t.Fatalf("expected flat scoring by default, got %+v", cfg.ScoringKindPoints)
	}

	t.Setenv("SETTLEMENT_GRADING_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SETTLEMENT_GRADING_WORKERS=0")
	}
}

func TestParseKindPoints(t *testing.T) {
	got, err := parseKindPoints(" moneyline:1, SPREAD:2 ,TOTAL:3")
	if err != nil {
		t.Fatalf("parse kind points: %v", err)
	}
	if got["MONEYLINE"] != 1 || got["SPREAD"] != 2 || got["TOTAL"] != 3 {
		t.Fatalf("unexpected kind points: %+v", got)
	}

	for _, raw := range []string{"PARLAY:2", "SPREAD", "TOTAL:x", "SPREAD:-1"} {
		if _, err := parseKindPoints(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLoad_NATSSubjectDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://nats.internal:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FeedEventsSubject != "games.results.updated" {
		t.Fatalf("unexpected feed subject: %q", cfg.FeedEventsSubject)
	}
}
