// Package notify delivers applicant notifications when an admin decides on a registration.
// Delivery is best effort: a failed send is logged and reported, never returned as an error.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Kind selects the message template.
type Kind string

const (
	KindApproved Kind = "approved"
	KindRejected Kind = "rejected"
)

// Notification is one message to one applicant.
type Notification struct {
	Kind          Kind
	To            string
	ApplicantName string
	ProjectTitle  string
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport sends a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Result is the delivery outcome reported back to the caller.
type Result struct {
	Sent bool
	Err  error
}

// Observer is told about every delivery attempt.
type Observer interface {
	ObserveNotification(kind string, sent bool)
}

// Dispatcher renders notifications and hands them to a transport under a deadline.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
	observer  Observer
}

const defaultTimeout = 5 * time.Second

type Option func(*Dispatcher)

func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(disp *Dispatcher) { disp.observer = o }
}

func NewDispatcher(transport Transport, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		transport: transport,
		timeout:   defaultTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify renders and sends n. It never blocks longer than the configured timeout.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) Result {
	res := d.notify(ctx, n)
	if d.observer != nil {
		d.observer.ObserveNotification(string(n.Kind), res.Sent)
	}
	if res.Err != nil {
		d.logger.WarnContext(ctx, "notification not delivered",
			"kind", n.Kind,
			"to", n.To,
			"transport", d.transport.Name(),
			"error", res.Err,
		)
		return res
	}
	d.logger.InfoContext(ctx, "notification delivered", "kind", n.Kind, "to", n.To)
	return res
}

func (d *Dispatcher) notify(ctx context.Context, n Notification) Result {
	msg, err := Render(n)
	if err != nil {
		return Result{Err: err}
	}

	// Detach from the request so a client disconnect does not abort a send already in flight.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.transport.Send(sendCtx, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return Result{Err: fmt.Errorf("%s send: %w", d.transport.Name(), err)}
		}
		return Result{Sent: true}
	case <-sendCtx.Done():
		return Result{Err: fmt.Errorf("%s send: %w", d.transport.Name(), sendCtx.Err())}
	}
}
