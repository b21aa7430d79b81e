package http

import (
	"log/slog"

	"github.com/y4d-ngo/beneficiary-portal/internal/api/http/middleware"
	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
)

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	svc     *lifecycle.Service
	limiter *middleware.ClientRateLimiter
	logger  *slog.Logger
}

// New builds the handler. A nil limiter leaves the registration endpoint unthrottled.
func New(svc *lifecycle.Service, limiter *middleware.ClientRateLimiter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, limiter: limiter, logger: logger}
}
