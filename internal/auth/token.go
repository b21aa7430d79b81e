package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
)

const tokenIssuer = "ngo-portal"

// Claims are the admin session token claims. RegisteredClaims.ID carries the session id.
type Claims struct {
	Username string `json:"username"`
	Method   string `json:"method"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens.
type TokenIssuer struct {
	signingKey []byte
}

func NewTokenIssuer(signingKey string) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey)}
}

// Issue signs a token for s.
func (t *TokenIssuer) Issue(s *domain.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: s.Username,
		Method:   s.Method,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Username,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	return token.SignedString(t.signingKey)
}

// Parse validates the signature and expiry and returns the claims.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(time.Now))
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
