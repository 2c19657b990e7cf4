package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// initUptrace installs the global tracer and meter providers. Logs stay on
// zap.
func initUptrace(cfg config.Config, component string, logger *logging.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noop, nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noop, nil
	}

	attrs := []attribute.KeyValue{attribute.String("service.namespace", "pick-league")}
	if component != "" {
		attrs = append(attrs, attribute.String("service.component", component))
	}
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attrs...),
		uptrace.WithLoggingEnabled(false),
	)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"component", component,
		"environment", cfg.AppEnv,
	)
	return uptrace.Shutdown, nil
}
