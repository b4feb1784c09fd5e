package domain

import (
	"context"
	"strings"
)

// Identity is the caller as asserted by the identity provider's verified token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// NormalizedEmail returns the identity email lower-cased and trimmed.
func (i Identity) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(i.Email))
}

// TokenVerifier verifies a bearer token and returns the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// UserRepository stores users asserted by the identity provider.
type UserRepository interface {
	GetSummaryByID(ctx context.Context, id string) (*UserSummary, error)
	// Upsert records the identity's user row, refreshing name and email when
	// the token carries them.
	Upsert(ctx context.Context, id Identity) error
}
