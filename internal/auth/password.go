package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
)

// HashPassword creates a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// CredentialChecker verifies the single configured admin account.
type CredentialChecker struct {
	username     string
	passwordHash []byte
}

func NewCredentialChecker(username, passwordHash string) *CredentialChecker {
	return &CredentialChecker{username: username, passwordHash: []byte(passwordHash)}
}

// Check returns domain.ErrInvalidCredentials for any mismatch. The password hash is always
// compared so timing does not reveal whether the username matched.
func (c *CredentialChecker) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	err := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("could not verify password: %w", err)
	}
	if !userOK || err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
