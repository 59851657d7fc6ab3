package auth

import (
	"context"

	"github.com/spec-kit/warden/internal/domain"
)

// CredentialStore looks up identities for grant evaluation.
// Implementations return (nil, nil) when no identity matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
}
