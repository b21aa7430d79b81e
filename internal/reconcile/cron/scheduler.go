package cronjob

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
)

// Reconciler is the part of the rules engine the scheduler drives.
type Reconciler interface {
	ReconcileAll(ctx context.Context) ([]lifecycle.ReconcileResult, error)
}

type Scheduler struct {
	reconciler Reconciler
	schedule   string
	timeout    time.Duration
	logger     *slog.Logger
	cron       *cron.Cron
}

// NewScheduler runs the reconciliation pass on schedule, a standard five-field cron spec
// or a descriptor such as "@every 15m". A run still in progress makes the next one skip.
func NewScheduler(r Reconciler, schedule string, logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		reconciler: r,
		schedule:   schedule,
		timeout:    5 * time.Minute,
		logger:     logger,
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}
}

// Start registers the job and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}
	s.logger.Info("cron scheduler started", "job", "reconcile", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one reconciliation pass and reports how many projects were repaired.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	results, err := s.reconciler.ReconcileAll(ctx)
	repaired, deferred := 0, 0
	for _, r := range results {
		if r.Repaired {
			repaired++
		}
		if r.Deferred {
			deferred++
		}
	}
	if err != nil {
		s.logger.Error("reconcile job failed", "checked", len(results), "repaired", repaired, "error", err)
		return repaired, err
	}
	s.logger.Info("reconcile job completed",
		"checked", len(results),
		"repaired", repaired,
		"deferred", deferred,
		"duration", time.Since(start),
	)
	return repaired, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
