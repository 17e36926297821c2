package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CredentialStore is the persistence contract for credentials, keyed by username.
//
// FindByUsername and UpdatePasswordHash return domain.ErrCredentialNotFound when
// no row matches. Insert returns domain.ErrDuplicateUsername on a uniqueness
// violation. Every other failure wraps domain.ErrStorageUnavailable.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.Credential, error)
	Insert(ctx context.Context, cred *domain.Credential) error
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
	Ping(ctx context.Context) error
}
