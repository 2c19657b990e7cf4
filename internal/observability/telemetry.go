package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
)

// Options select which process is starting telemetry. Component is attached
// to spans and profiles, e.g. "api" or "settle".
type Options struct {
	Component string
	Pprof     bool
}

// Telemetry owns the tracing, profiling and pprof lifecycles of one process.
type Telemetry struct {
	logger          *logging.Logger
	shutdownTracing func(context.Context) error
	stopProfiler    func() error
	pprofSrv        *http.Server
}

// Start brings up every enabled backend. On error, anything already started
// is torn down before returning.
func Start(cfg config.Config, opts Options, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{
		logger:          logger.Named("observability"),
		shutdownTracing: func(context.Context) error { return nil },
		stopProfiler:    func() error { return nil },
	}

	var err error
	if t.shutdownTracing, err = initUptrace(cfg, opts.Component, t.logger); err != nil {
		return nil, err
	}
	if t.stopProfiler, err = initPyroscope(cfg, opts.Component, t.logger); err != nil {
		_ = t.shutdownTracing(context.Background())
		return nil, err
	}
	if opts.Pprof {
		if t.pprofSrv, err = startPprofServer(cfg, t.logger); err != nil {
			_ = t.stopProfiler()
			_ = t.shutdownTracing(context.Background())
			return nil, err
		}
	}
	return t, nil
}

// Shutdown stops backends in reverse start order and flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if err := stopPprofServer(ctx, t.pprofSrv, 5*time.Second); err != nil {
		errs = append(errs, err)
	}
	if err := t.stopProfiler(); err != nil {
		errs = append(errs, err)
	}
	if err := t.shutdownTracing(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
