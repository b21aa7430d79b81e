package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin123")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestCredentialChecker(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	c := NewCredentialChecker("admin", string(hash))

	assert.NoError(t, c.Check("admin", "s3cret"))
	assert.ErrorIs(t, c.Check("admin", "wrong"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("root", "s3cret"), domain.ErrInvalidCredentials)

	broken := NewCredentialChecker("admin", "not-a-bcrypt-hash")
	err = broken.Check("admin", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key")
	now := time.Now()
	sess := &domain.Session{
		ID:        "sess-1",
		Username:  "admin",
		Method:    domain.MethodPassword,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := issuer.Issue(sess)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "admin", claims.Username)

	_, err = NewTokenIssuer("other-key").Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	expired := *sess
	expired.CreatedAt = now.Add(-2 * time.Hour)
	expired.ExpiresAt = now.Add(-time.Hour)
	old, err := issuer.Issue(&expired)
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

type fakeIDTokenVerifier struct {
	token *fbauth.Token
	err   error
}

func (f fakeIDTokenVerifier) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier(t *testing.T) {
	ctx := context.Background()

	v := NewFirebaseVerifier(fakeIDTokenVerifier{token: &fbauth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"admin": true, "email": "ops@y4d.ngo"},
	}})
	who, err := v.VerifyAdmin(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "ops@y4d.ngo", who)

	v = NewFirebaseVerifier(fakeIDTokenVerifier{token: &fbauth.Token{UID: "uid-2", Claims: map[string]interface{}{"admin": true}}})
	who, err = v.VerifyAdmin(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", who)

	v = NewFirebaseVerifier(fakeIDTokenVerifier{token: &fbauth.Token{UID: "uid-3", Claims: map[string]interface{}{}}})
	_, err = v.VerifyAdmin(ctx, "id-token")
	assert.ErrorIs(t, err, domain.ErrNotAdmin)

	v = NewFirebaseVerifier(fakeIDTokenVerifier{err: errors.New("token expired")})
	_, err = v.VerifyAdmin(ctx, "id-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
