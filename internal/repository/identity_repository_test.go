package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/warden/internal/domain"
)

var identityColumnNames = []string{
	"id", "name", "email", "email_verified", "master_password_hash", "master_password_hint",
	"key", "private_key", "public_key", "kdf_type", "kdf_iterations", "security_stamp", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresIdentityRepository_MissingIsEmpty(t *testing.T) {
	pool := newMockPool(t)
	repo := NewPostgresIdentityRepository(pool)

	pool.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("nobody@b.com").
		WillReturnRows(pgxmock.NewRows(identityColumnNames))
	pool.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(identityColumnNames))

	identity, err := repo.FindByEmail(context.Background(), "nobody@b.com")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, identity)

	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresIdentityRepository_QueryFailureIsAnError(t *testing.T) {
	pool := newMockPool(t)
	repo := NewPostgresIdentityRepository(pool)

	pool.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("a@b.com").
		WillReturnError(errors.New("connection refused"))

	identity, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.Nil(t, identity)
	assert.NotErrorIs(t, err, domain.ErrCorruptIdentity)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresIdentityRepository_CreateDuplicateEmail(t *testing.T) {
	pool := newMockPool(t)
	repo := NewPostgresIdentityRepository(pool)

	pool.ExpectQuery(`INSERT INTO users`).
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.Identity{ID: "u2", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresIdentityRepository_CreateOtherFailure(t *testing.T) {
	pool := newMockPool(t)
	repo := NewPostgresIdentityRepository(pool)

	pool.ExpectQuery(`INSERT INTO users`).
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "users_email_lowercase"})

	err := repo.Create(context.Background(), &domain.Identity{ID: "u2", Email: "A@b.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, pool.ExpectationsWereMet())
}
