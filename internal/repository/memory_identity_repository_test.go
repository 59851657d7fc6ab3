package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/warden/internal/domain"
)

func TestMemoryIdentityRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	identity := &domain.Identity{ID: "u1", Email: "a@b.com", MasterPasswordHash: "H"}
	require.NoError(t, repo.Create(ctx, identity))
	assert.False(t, identity.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@b.com", byID.Email)
}

func TestMemoryIdentityRepository_NotFoundIsEmpty(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.Identity{ID: "u1", Email: "a@b.com"}))

	identity, err := repo.FindByEmail(context.Background(), "missing@b.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	// Lookups are exact; callers normalize before calling.
	identity, err = repo.FindByEmail(context.Background(), "A@B.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = repo.FindByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestMemoryIdentityRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Identity{ID: "u1", Email: "a@b.com"}))
	err := repo.Create(ctx, &domain.Identity{ID: "u2", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryIdentityRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}
