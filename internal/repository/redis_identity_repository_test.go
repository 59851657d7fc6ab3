package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/warden/internal/domain"
)

func TestDecodeIdentity(t *testing.T) {
	name := "Alice"
	payload, err := json.Marshal(domain.Identity{
		ID:            "u1",
		Name:          &name,
		Email:         "a@b.com",
		KdfType:       domain.KdfTypeArgon2,
		KdfIterations: 3,
	})
	require.NoError(t, err)

	identity, err := decodeIdentity(payload)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "Alice", identity.DisplayName())
	assert.Equal(t, domain.KdfTypeArgon2, identity.KdfType)
}

func TestDecodeIdentity_Corrupt(t *testing.T) {
	for _, payload := range []string{`{not json`, `{"id":42}`, `{"email":"a@b.com"}`} {
		_, err := decodeIdentity([]byte(payload))
		assert.ErrorIs(t, err, domain.ErrCorruptIdentity, payload)
	}
}

func TestRedisKeys(t *testing.T) {
	repo := NewRedisIdentityRepository(nil, "").(*redisIdentityRepository)
	assert.Equal(t, "warden:identity:u1", repo.idKey("u1"))
	assert.Equal(t, "warden:identity-email:a@b.com", repo.emailKey("a@b.com"))
}

func newMiniredisRepository(t *testing.T) (*miniredis.Miniredis, *redisIdentityRepository) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, NewRedisIdentityRepository(client, "warden").(*redisIdentityRepository)
}

func TestRedisIdentityRepository_CreateAndFind(t *testing.T) {
	_, repo := newMiniredisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Identity{ID: "u1", Email: "a@b.com", MasterPasswordHash: "H"}))

	byEmail, err := repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "H", byEmail.MasterPasswordHash)

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@b.com", byID.Email)
}

func TestRedisIdentityRepository_MissingIsEmpty(t *testing.T) {
	server, repo := newMiniredisRepository(t)
	ctx := context.Background()

	identity, err := repo.FindByEmail(ctx, "nobody@b.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = repo.FindByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	// An index entry whose document is gone reads as no account.
	require.NoError(t, server.Set(repo.emailKey("ghost@b.com"), "ghost"))
	identity, err = repo.FindByEmail(ctx, "ghost@b.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestRedisIdentityRepository_DuplicateEmail(t *testing.T) {
	server, repo := newMiniredisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Identity{ID: "u1", Email: "a@b.com"}))
	err := repo.Create(ctx, &domain.Identity{ID: "u2", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	assert.False(t, server.Exists(repo.idKey("u2")), "losing document is removed")
	owner, err := server.Get(repo.emailKey("a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
}

func TestRedisIdentityRepository_OrphanDocumentDoesNotReserveEmail(t *testing.T) {
	server, repo := newMiniredisRepository(t)
	ctx := context.Background()

	// A document written before a crash, with no index entry.
	orphan, err := json.Marshal(domain.Identity{ID: "stale", Email: "a@b.com"})
	require.NoError(t, err)
	require.NoError(t, server.Set(repo.idKey("stale"), string(orphan)))

	identity, err := repo.FindByEmail(ctx, "a@b.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	require.NoError(t, repo.Create(ctx, &domain.Identity{ID: "u1", Email: "a@b.com"}))
	identity, err = repo.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.ID)
}

func TestRedisIdentityRepository_CorruptDocument(t *testing.T) {
	server, repo := newMiniredisRepository(t)

	require.NoError(t, server.Set(repo.emailKey("a@b.com"), "u1"))
	require.NoError(t, server.Set(repo.idKey("u1"), "{not json"))

	_, err := repo.FindByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, domain.ErrCorruptIdentity)
}

func TestRedisIdentityRepository_BackendFailureIsAnError(t *testing.T) {
	server, repo := newMiniredisRepository(t)
	server.SetError("LOADING Redis is loading the dataset in memory")

	identity, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.Nil(t, identity)
	assert.NotErrorIs(t, err, domain.ErrCorruptIdentity)

	err = repo.Create(context.Background(), &domain.Identity{ID: "u1", Email: "a@b.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}
