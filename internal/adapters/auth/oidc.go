package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc"

	"eventcatalog/internal/domain"
)

// idToken is the subset of go-oidc's *IDToken the verifier reads.
type idToken interface {
	Claims(v interface{}) error
}

type oidcVerifier struct {
	verify func(ctx context.Context, raw string) (idToken, error)
}

// NewOIDCVerifier discovers issuerURL and returns a TokenVerifier for ID tokens
// issued to clientID. Discovery happens once, at construction.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (domain.TokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})
	return &oidcVerifier{
		verify: func(ctx context.Context, raw string) (idToken, error) {
			return verifier.Verify(ctx, raw)
		},
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, raw string) (domain.Identity, error) {
	token, err := v.verify(ctx, raw)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := token.Claims(&claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, errors.New("missing subject"))
	}

	id := domain.Identity{UserID: claims.Subject, Name: claims.Name}
	// Unverified addresses must not unlock invitations.
	if claims.EmailVerified {
		id.Email = claims.Email
	}
	return id, nil
}
