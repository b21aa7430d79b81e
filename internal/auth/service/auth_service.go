package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
	"github.com/y4d-ngo/beneficiary-portal/internal/auth/repository"
)

// AuthService owns admin sign-in: it checks credentials, issues session tokens and keeps the
// session record that makes a token revocable.
type AuthService struct {
	credentials *auth.CredentialChecker
	firebase    *auth.FirebaseVerifier
	tokens      *auth.TokenIssuer
	sessions    repository.SessionRepository
	ttl         time.Duration
	now         func() time.Time
}

func NewAuthService(
	credentials *auth.CredentialChecker,
	tokens *auth.TokenIssuer,
	sessions repository.SessionRepository,
	ttl time.Duration,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		sessions:    sessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// WithFirebase enables sign-in with Firebase ID tokens.
func (s *AuthService) WithFirebase(v *auth.FirebaseVerifier) *AuthService {
	s.firebase = v
	return s
}

// FirebaseEnabled reports whether Firebase sign-in is configured.
func (s *AuthService) FirebaseEnabled() bool {
	return s.firebase != nil
}

// TTL is the lifetime of new sessions.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login checks the admin username and password and starts a session.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Session, error) {
	if s.credentials == nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := s.credentials.Check(req.Username, req.Password); err != nil {
		return "", nil, err
	}
	return s.startSession(ctx, req.Username, domain.MethodPassword)
}

// LoginWithFirebase exchanges a Firebase ID token of an admin account for a session.
func (s *AuthService) LoginWithFirebase(ctx context.Context, idToken string) (string, *domain.Session, error) {
	if s.firebase == nil {
		return "", nil, fmt.Errorf("%w: firebase sign-in is not configured", domain.ErrUnauthorized)
	}
	username, err := s.firebase.VerifyAdmin(ctx, idToken)
	if err != nil {
		return "", nil, err
	}
	return s.startSession(ctx, username, domain.MethodFirebase)
}

func (s *AuthService) startSession(ctx context.Context, username, method string) (string, *domain.Session, error) {
	now := s.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Username:  username,
		Method:    method,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, sess, nil
}

// Verify validates token and checks that its session has not been revoked.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) || sess.Username != claims.Username {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// Logout revokes the session behind token. An invalid or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}
