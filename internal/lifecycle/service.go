// Package lifecycle is the rules engine for projects and registrations: admission against
// capacity, status transitions, count reconciliation, deletion guards and decision
// notifications. It talks to storage only through domain.Store.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/y4d-ngo/beneficiary-portal/internal/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/events"
	"github.com/y4d-ngo/beneficiary-portal/internal/notify"
)

// Notifier delivers decision notifications. *notify.Dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) notify.Result
}

// Observer receives rules-engine outcomes for metrics.
type Observer interface {
	ObserveAdmission(outcome string)
	ObserveSlotRelease(ok bool)
	ObserveReconcile(drifted bool)
	ObserveStatusChange(status string)
}

type nopObserver struct{}

func (nopObserver) ObserveAdmission(string)    {}
func (nopObserver) ObserveSlotRelease(bool)    {}
func (nopObserver) ObserveReconcile(bool)      {}
func (nopObserver) ObserveStatusChange(string) {}

// Service applies the project and registration rules on top of an entity store.
type Service struct {
	store     domain.Store
	notifier  Notifier
	publisher events.Publisher
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time

	reconcileGrace time.Duration
}

// DefaultReconcileGrace is how long after a project's last count change Reconcile waits
// before it will lower the count. It bounds how long an admission may sit between
// reserving a slot and inserting its registration.
const DefaultReconcileGrace = 2 * time.Minute

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithReconcileGrace overrides DefaultReconcileGrace. Zero lets Reconcile lower counts
// immediately.
func WithReconcileGrace(d time.Duration) Option {
	return func(s *Service) { s.reconcileGrace = d }
}

// NewService creates a rules engine over store. A nil notifier disables notifications.
func NewService(store domain.Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:     store,
		notifier:  notifier,
		publisher: events.Nop{},
		observer:  nopObserver{},
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },

		reconcileGrace: DefaultReconcileGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, ev events.RegistrationEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "publish registration event failed",
			"type", ev.Type,
			"registration_id", ev.RegistrationID,
			"error", err,
		)
	}
}
