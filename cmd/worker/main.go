package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/bootstrap"
	"github.com/y4d-ngo/beneficiary-portal/internal/platform/logger"
	cronjob "github.com/y4d-ngo/beneficiary-portal/internal/reconcile/cron"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.Environment).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise dependencies", "error", err)
		os.Exit(1)
	}

	scheduler := cronjob.NewScheduler(app.Lifecycle, cfg.Worker.ReconcileSchedule, log)
	// Repair drift left by a crash before the first tick.
	if _, err := scheduler.RunOnce(ctx); err != nil {
		log.Warn("initial reconcile failed", "error", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		_ = app.Close(context.Background())
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Warn("reconcile job did not finish before shutdown", "error", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Error("failed to close dependencies", "error", err)
	}
}
