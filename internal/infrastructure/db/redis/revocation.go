package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// RevocationStore keeps a denylist of sessions invalidated before expiry.
//
// Key formats:
//
//	session:revoked:<session_id>   expires with the session
//	session:notbefore:<username>   unix seconds; sessions issued earlier are revoked
type RevocationStore struct {
	client *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

// NewRevocationStore wraps client. maxAge bounds how long a watermark must be
// kept: past it every session it could reject has expired on its own.
func NewRevocationStore(client *redis.Client, maxAge time.Duration) *RevocationStore {
	return &RevocationStore{client: client, maxAge: maxAge, now: time.Now}
}

func (s *RevocationStore) Revoke(ctx context.Context, session domain.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(session.ID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RevocationStore) RevokeBefore(ctx context.Context, username string, t time.Time) error {
	err := s.client.Set(ctx, notBeforeKey(username), t.Unix(), s.maxAge).Err()
	if err != nil {
		return fmt.Errorf("revoke sessions before: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, session domain.Session) (bool, error) {
	pipe := s.client.Pipeline()
	denied := pipe.Exists(ctx, revokedKey(session.ID))
	notBefore := pipe.Get(ctx, notBeforeKey(session.Username))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if denied.Val() > 0 {
		return true, nil
	}

	raw, err := notBefore.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation: %w: %w", domain.ErrStorageUnavailable, err)
	}
	watermark, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation watermark %q: %w", raw, err)
	}
	return session.IssuedAt.Unix() < watermark, nil
}

// Ping reports whether redis is reachable, for readiness checks.
func (s *RevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func revokedKey(sessionID string) string {
	return "session:revoked:" + sessionID
}

func notBeforeKey(username string) string {
	return "session:notbefore:" + username
}
