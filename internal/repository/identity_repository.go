package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/warden/internal/domain"
)

// ErrDuplicateEmail is returned by Create when the normalized email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

const pgUniqueViolation = "23505"

// IdentityRepository persists accounts. Lookups return (nil, nil) when nothing matches.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	Ping(ctx context.Context) error
}

// PgxPool is the part of *pgxpool.Pool the identity repository uses.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresIdentityRepository struct {
	pool PgxPool
}

// NewPostgresIdentityRepository returns a Postgres-backed implementation.
func NewPostgresIdentityRepository(pool PgxPool) IdentityRepository {
	return &postgresIdentityRepository{pool: pool}
}

const identityColumns = `id, name, email, email_verified, master_password_hash, master_password_hint,
        key, private_key, public_key, kdf_type, kdf_iterations, security_stamp, created_at, updated_at`

func (r *postgresIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO users (id, name, email, email_verified, master_password_hash, master_password_hint,
            key, private_key, public_key, kdf_type, kdf_iterations, security_stamp)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.EmailVerified,
		identity.MasterPasswordHash,
		identity.MasterPasswordHint,
		identity.Key,
		identity.PrivateKey,
		identity.PublicKey,
		identity.KdfType,
		identity.KdfIterations,
		identity.SecurityStamp,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *postgresIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, `SELECT `+identityColumns+` FROM users WHERE email=$1`, email)
}

func (r *postgresIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, `SELECT `+identityColumns+` FROM users WHERE id=$1`, id)
}

func (r *postgresIdentityRepository) findOne(ctx context.Context, query string, arg string) (*domain.Identity, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	identity, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.Identity])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collect identity: %w", err)
	}
	return identity, nil
}

func (r *postgresIdentityRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}
