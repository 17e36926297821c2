// Package memory holds an in-process CredentialStore for local development
// and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{users: make(map[string]domain.Credential)}
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.users[username]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &c, nil
}

func (s *CredentialStore) Insert(ctx context.Context, cred *domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[cred.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	s.users[cred.Username] = *cred
	return nil
}

func (s *CredentialStore) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[username]
	if !ok {
		return domain.ErrCredentialNotFound
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = time.Now().UTC()
	s.users[username] = c
	return nil
}

func (s *CredentialStore) Ping(context.Context) error { return nil }
