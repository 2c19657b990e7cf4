// Command settle runs one settlement pass and exits. It is meant for cron
// schedulers that cannot reach the internal job route.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/pick-league/internal/app"
	"github.com/riskibarqy/pick-league/internal/config"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/observability"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

func main() {
	timeout := flag.Duration("timeout", 0, "upper bound for the whole pass (default SETTLEMENT_PASS_TIMEOUT)")
	manual := flag.Bool("manual", false, "record the run as manual instead of schedule")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	os.Exit(run(cfg, *timeout, *manual))
}

func run(cfg config.Config, timeout time.Duration, manual bool) int {
	if timeout > 0 {
		cfg.SettlementPassTimeout = timeout
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "command", "settle")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	telemetry, err := observability.Start(cfg, observability.Options{Component: "settle"}, logger)
	if err != nil {
		logger.Error("start telemetry", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(flushCtx); err != nil {
			logger.Error("shutdown telemetry", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.SettlementPassTimeout+30*time.Second)
	defer cancel()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	trigger := settlement.TriggerSchedule
	if manual {
		trigger = settlement.TriggerManual
	}

	report, err := container.Settlement.RunSettlementPass(ctx, usecase.RunSettlementInput{
		Now:     container.Clock.Now(),
		Trigger: trigger,
	})
	if err != nil {
		logger.Error("settlement pass failed", "error", err)
		return 1
	}

	logger.Info("settlement pass complete",
		"run_id", report.RunID,
		"games_settled", report.GamesSettled,
		"picks_changed", report.PicksChanged,
		"cards_updated", report.CardsUpdated,
		"errors", len(report.Errors),
	)
	if len(report.Errors) > 0 {
		return 2
	}
	return 0
}
