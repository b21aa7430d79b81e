package domain

import (
	"errors"
	"time"
)

// Login methods recorded on a session.
const (
	MethodPassword = "password"
	MethodFirebase = "firebase"
)

// Session is an authenticated admin session. Its ID is the jti of the issued token, so
// deleting the session revokes the token.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginRequest is the admin login form.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotAdmin           = errors.New("account is not an admin")
)
