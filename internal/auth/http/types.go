package http

import (
	"log/slog"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/service"
)

type Handler struct {
	authService  *service.AuthService
	secureCookie bool
	logger       *slog.Logger
}

// New creates the admin session handlers. secureCookie should be true behind HTTPS.
func New(authService *service.AuthService, secureCookie bool, logger *slog.Logger) *Handler {
	return &Handler{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type firebaseLoginRequest struct {
	IDToken string `json:"idToken"`
}
