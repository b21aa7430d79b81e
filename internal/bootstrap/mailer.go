package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/notify"
)

// NewTransport builds the mail transport selected by MAIL_TRANSPORT.
func NewTransport(ctx context.Context, cfg config.NotifyConfig, logger *slog.Logger) (notify.Transport, error) {
	switch cfg.Transport {
	case config.MailSES:
		t, err := notify.NewSESTransport(ctx, cfg.AWSRegion, cfg.From)
		if err != nil {
			return nil, fmt.Errorf("ses transport: %w", err)
		}
		return t, nil
	case config.MailWebhook:
		return notify.NewWebhookTransport(cfg.WebhookURL, cfg.From), nil
	case config.MailLog, "":
		return notify.NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// NewDispatcher wires the transport into a dispatcher with the configured timeout.
func NewDispatcher(ctx context.Context, cfg config.NotifyConfig, logger *slog.Logger, observer notify.Observer) (*notify.Dispatcher, error) {
	t, err := NewTransport(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := []notify.Option{notify.WithTimeout(cfg.Timeout)}
	if observer != nil {
		opts = append(opts, notify.WithObserver(observer))
	}
	logger.Info("mail transport ready", "transport", t.Name())
	return notify.NewDispatcher(t, logger, opts...), nil
}
