package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// uniqueViolation is the SQLSTATE raised when the username primary key clashes.
const uniqueViolation = "23505"

const schema = `CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// CredentialStore persists credentials in the users table.
type CredentialStore struct {
	pool *pgxpool.Pool
}

func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// Migrate creates the users table when it does not exist yet.
func (s *CredentialStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	const q = `SELECT username, password_hash, created_at, updated_at FROM users WHERE username = $1`
	var c domain.Credential
	err := s.pool.QueryRow(ctx, q, username).Scan(&c.Username, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return &c, nil
}

func (s *CredentialStore) Insert(ctx context.Context, cred *domain.Credential) error {
	const q = `INSERT INTO users (username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, q, cred.Username, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert credential: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *CredentialStore) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE username = $1`
	tag, err := s.pool.Exec(ctx, q, username, passwordHash)
	if err != nil {
		return fmt.Errorf("update credential: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
