// Package crypto implements password hashing for the auth service.
package crypto

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/pkg/metrics"
)

// DefaultCost is the bcrypt work factor (log2 rounds) used when none is configured.
const DefaultCost = 12

// BcryptHasher hashes passwords as bcrypt(base64(HMAC-SHA256(pepper, password))).
// The pepper is process-wide; bcrypt supplies the per-record salt. The HMAC
// step also keeps bcrypt's input at 43 bytes, well under its 72-byte limit.
type BcryptHasher struct {
	pepper []byte
	cost   int
}

// NewBcryptHasher returns a hasher keyed with pepper. A zero cost selects
// DefaultCost.
func NewBcryptHasher(pepper string, cost int) (*BcryptHasher, error) {
	if pepper == "" {
		return nil, fmt.Errorf("%w: empty pepper", domain.ErrHashing)
	}
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: cost %d outside [%d, %d]", domain.ErrHashing, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{pepper: []byte(pepper), cost: cost}, nil
}

// Hash produces a salted, peppered bcrypt hash.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	out, err := bcrypt.GenerateFromPassword(h.peppered(plaintext), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(out), nil
}

// Verify compares plaintext against storedHash in constant time. A wrong
// password is (false, nil); a hash bcrypt cannot parse is ErrVerification.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, storedHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), h.peppered(plaintext))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrVerification, err)
	}
}

// Cost reports the work factor new hashes are created with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) peppered(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	sum := mac.Sum(nil)

	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum)
	return out
}
