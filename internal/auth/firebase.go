package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/y4d-ngo/beneficiary-portal/internal/auth/domain"
)

// adminClaim is the Firebase custom claim that marks an admin account.
const adminClaim = "admin"

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// IDTokenVerifier is the part of *auth.Client used for admin sign-in.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens of accounts carrying the admin custom claim.
type FirebaseVerifier struct {
	client IDTokenVerifier
}

func NewFirebaseVerifier(client IDTokenVerifier) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// VerifyAdmin returns the admin's display identity: the email claim when present, else the uid.
func (v *FirebaseVerifier) VerifyAdmin(ctx context.Context, idToken string) (string, error) {
	decoded, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if isAdmin, _ := decoded.Claims[adminClaim].(bool); !isAdmin {
		return "", domain.ErrNotAdmin
	}
	if email, ok := decoded.Claims["email"].(string); ok && email != "" {
		return email, nil
	}
	return decoded.UID, nil
}
