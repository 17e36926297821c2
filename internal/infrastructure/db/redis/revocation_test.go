package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-service/internal/core/domain"
)

func newTestStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationStore(client, 24*time.Hour), mr
}

func testSession(id string, issued time.Time) domain.Session {
	return domain.Session{
		Principal: domain.Principal{Username: "alice"},
		ID:        id,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(24 * time.Hour),
	}
}

func TestRevocationStore_UnknownSessionNotRevoked(t *testing.T) {
	s, _ := newTestStore(t)

	revoked, err := s.IsRevoked(context.Background(), testSession("s1", time.Now()))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_RevokeSingleSession(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Revoke(ctx, testSession("s1", now)))

	revoked, err := s.IsRevoked(ctx, testSession("s1", now))
	require.NoError(t, err)
	assert.True(t, revoked)

	other, err := s.IsRevoked(ctx, testSession("s2", now))
	require.NoError(t, err)
	assert.False(t, other, "revoking one session must not affect another")

	ttl := mr.TTL("session:revoked:s1")
	assert.Greater(t, ttl, 23*time.Hour)
	assert.LessOrEqual(t, ttl, 24*time.Hour)
}

func TestRevocationStore_RevokeEntryExpiresWithSession(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, testSession("s1", time.Now())))
	mr.FastForward(25 * time.Hour)

	assert.False(t, mr.Exists("session:revoked:s1"))
}

func TestRevocationStore_RevokeExpiredSessionIsNoop(t *testing.T) {
	s, mr := newTestStore(t)

	expired := testSession("old", time.Now().Add(-48*time.Hour))
	require.NoError(t, s.Revoke(context.Background(), expired))
	assert.False(t, mr.Exists("session:revoked:old"))
}

func TestRevocationStore_RevokeBefore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	cut := time.Unix(1_700_000_000, 0)

	require.NoError(t, s.RevokeBefore(ctx, "alice", cut))

	before, err := s.IsRevoked(ctx, testSession("a", cut.Add(-time.Second)))
	require.NoError(t, err)
	assert.True(t, before)

	sameSecond, err := s.IsRevoked(ctx, testSession("b", cut.Add(500*time.Millisecond)))
	require.NoError(t, err)
	assert.False(t, sameSecond, "watermark has second precision")

	after, err := s.IsRevoked(ctx, testSession("c", cut.Add(time.Second)))
	require.NoError(t, err)
	assert.False(t, after)

	bob := testSession("d", cut.Add(-time.Hour))
	bob.Username = "bob"
	other, err := s.IsRevoked(ctx, bob)
	require.NoError(t, err)
	assert.False(t, other)
}

func TestRevocationStore_WatermarkExpiresAfterMaxAge(t *testing.T) {
	s, mr := newTestStore(t)

	require.NoError(t, s.RevokeBefore(context.Background(), "alice", time.Now()))
	assert.True(t, mr.Exists("session:notbefore:alice"))

	mr.FastForward(24*time.Hour + time.Second)
	assert.False(t, mr.Exists("session:notbefore:alice"))
}

func TestRevocationStore_CorruptWatermark(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set("session:notbefore:alice", "not-a-number"))

	_, err := s.IsRevoked(context.Background(), testSession("s1", time.Now()))
	assert.Error(t, err)
}

func TestRevocationStore_Unavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.IsRevoked(context.Background(), testSession("s1", time.Now()))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	err = s.RevokeBefore(context.Background(), "alice", time.Now())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
