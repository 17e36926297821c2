package queue

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/ports"
)

// PooledHasher runs every Hash and Verify of the wrapped hasher on a HashPool.
type PooledHasher struct {
	pool  *HashPool
	inner ports.PasswordHasher
}

func NewPooledHasher(pool *HashPool, inner ports.PasswordHasher) *PooledHasher {
	return &PooledHasher{pool: pool, inner: inner}
}

func (h *PooledHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		out  string
		herr error
	)
	if err := h.pool.Do(ctx, func() { out, herr = h.inner.Hash(ctx, plaintext) }); err != nil {
		return "", err
	}
	return out, herr
}

func (h *PooledHasher) Verify(ctx context.Context, plaintext, storedHash string) (bool, error) {
	var (
		ok   bool
		verr error
	)
	if err := h.pool.Do(ctx, func() { ok, verr = h.inner.Verify(ctx, plaintext, storedHash) }); err != nil {
		return false, err
	}
	return ok, verr
}
