package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/y4d-ngo/beneficiary-portal/config"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/repository"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/service"
)

const devAdminPassword = "admin123"

// NewAuthService builds the admin auth collaborator. Outside production, a missing password
// hash or session secret falls back to development values with a warning.
func NewAuthService(ctx context.Context, cfg config.AuthConfig, isProduction bool, rdb *redis.Client, logger *slog.Logger) (*service.AuthService, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" && !isProduction {
		h, err := auth.HashPassword(devAdminPassword)
		if err != nil {
			return nil, err
		}
		hash = h
		logger.Warn("ADMIN_PASSWORD_HASH not set; using the development admin password")
	}

	secret := cfg.SessionSecret
	if secret == "" && !isProduction {
		secret = uuid.NewString()
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	var sessions repository.SessionRepository
	if rdb != nil {
		sessions = repository.NewRedisSessionRepository(rdb)
	} else {
		sessions = repository.NewMemorySessionRepository()
	}

	var creds *auth.CredentialChecker
	if hash != "" {
		creds = auth.NewCredentialChecker(cfg.AdminUsername, hash)
	}
	svc := service.NewAuthService(creds, auth.NewTokenIssuer(secret), sessions, cfg.SessionTTL)

	if cfg.FirebaseCredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("firebase: %w", err)
		}
		svc.WithFirebase(auth.NewFirebaseVerifier(client))
		logger.Info("firebase admin sign-in enabled")
	}
	return svc, nil
}
