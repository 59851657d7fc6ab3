package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/warden/internal/domain"
)

// MemoryIdentityRepository keeps identities in process memory. Used for local runs and tests.
type MemoryIdentityRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Identity
	byEmail map[string]string
}

// NewMemoryIdentityRepository builds an empty store.
func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{
		byID:    make(map[string]domain.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryIdentityRepository) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[identity.Email]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	r.byID[identity.ID] = *identity
	r.byEmail[identity.Email] = identity.ID
	return nil
}

func (r *MemoryIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

func (r *MemoryIdentityRepository) Ping(context.Context) error {
	return nil
}
