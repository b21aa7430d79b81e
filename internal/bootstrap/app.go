package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/events"
	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
	"github.com/y4d-ngo/beneficiary-portal/internal/metrics"
	"github.com/y4d-ngo/beneficiary-portal/internal/notify"
)

// App holds the long-lived dependencies shared by the api, the worker and the CLI.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     domain.Store
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Lifecycle *lifecycle.Service
}

// NewApp opens the store and redis, builds the mail dispatcher and the rules engine.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, StoreOptions{}, logger)
	if err != nil {
		return nil, err
	}
	rdb, err := OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	m := metrics.New()
	dispatcher, err := NewDispatcher(ctx, cfg.Notify, logger, m)
	if err != nil {
		_ = store.Close(ctx)
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}

	return newApp(cfg, logger, store, rdb, m, dispatcher), nil
}

func newApp(cfg *config.Config, logger *slog.Logger, store domain.Store, rdb *redis.Client, m *metrics.Metrics, n lifecycle.Notifier) *App {
	var publisher events.Publisher = events.Nop{}
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb)
	}
	opts := []lifecycle.Option{
		lifecycle.WithPublisher(publisher),
		lifecycle.WithObserver(m),
		lifecycle.WithLogger(logger),
	}
	if cfg.Worker.ReconcileGrace > 0 {
		opts = append(opts, lifecycle.WithReconcileGrace(cfg.Worker.ReconcileGrace))
	}
	svc := lifecycle.NewService(store, n, opts...)
	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Redis:     rdb,
		Metrics:   m,
		Lifecycle: svc,
	}
}

// Close releases the store and redis connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ lifecycle.Notifier = (*notify.Dispatcher)(nil)
