package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/bootstrap"
	"github.com/y4d-ngo/beneficiary-portal/internal/platform/logger"
)

const serviceName = "ngo-beneficiary-portal"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	slog.SetDefault(log)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise dependencies", "error", err)
		os.Exit(1)
	}

	authSvc, err := bootstrap.NewAuthService(ctx, cfg.Auth, cfg.IsProduction(), app.Redis, log)
	if err != nil {
		log.Error("failed to initialise admin auth", "error", err)
		_ = app.Close(context.Background())
		os.Exit(1)
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		App:         app,
		Auth:        authSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting server", "service", serviceName, "port", cfg.Server.Port, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Error("failed to close dependencies", "error", err)
	}
}
