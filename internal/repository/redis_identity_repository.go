package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/warden/internal/domain"
)

type redisIdentityRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisIdentityRepository stores identities as JSON documents with an email -> id index.
func NewRedisIdentityRepository(client *redis.Client, prefix string) IdentityRepository {
	if prefix == "" {
		prefix = "warden"
	}
	return &redisIdentityRepository{client: client, prefix: prefix}
}

func (r *redisIdentityRepository) idKey(id string) string {
	return r.prefix + ":identity:" + id
}

func (r *redisIdentityRepository) emailKey(email string) string {
	return r.prefix + ":identity-email:" + email
}

func (r *redisIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	now := time.Now().UTC()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	// The document goes in first under its fresh id. A crash before the index is
	// claimed leaves an unreachable document, never a reserved email.
	if err := r.client.Set(ctx, r.idKey(identity.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("store identity: %w", err)
	}

	claimed, err := r.client.SetNX(ctx, r.emailKey(identity.Email), identity.ID, 0).Result()
	if err != nil {
		_ = r.client.Del(ctx, r.idKey(identity.ID)).Err()
		return fmt.Errorf("reserve email: %w", err)
	}
	if !claimed {
		_ = r.client.Del(ctx, r.idKey(identity.ID)).Err()
		return ErrDuplicateEmail
	}
	return nil
}

func (r *redisIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *redisIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	payload, err := r.client.Get(ctx, r.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	return decodeIdentity(payload)
}

func (r *redisIdentityRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeIdentity(payload []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIdentity, err)
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: missing id or email", domain.ErrCorruptIdentity)
	}
	return &identity, nil
}
