package ports

import "context"

// PasswordHasher hashes and verifies passwords. Verify reports (false, nil) for
// a wrong password and a domain.ErrVerification error for an unusable hash.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, storedHash string) (bool, error)
}
