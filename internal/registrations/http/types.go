package http

import (
	"log/slog"

	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
)

// Handler serves the admin registration review endpoints.
type Handler struct {
	svc    *lifecycle.Service
	logger *slog.Logger
}

func New(svc *lifecycle.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}
