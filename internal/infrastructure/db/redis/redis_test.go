package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions_URLWins(t *testing.T) {
	opts, err := Config{URL: "redis://:s3cret@cache:6380/2", Addr: "ignored:1", PoolSize: 7}.options()
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, defaultTimeout, opts.DialTimeout)
}

func TestConfigOptions_DiscreteFields(t *testing.T) {
	opts, err := Config{Addr: "localhost:6379", DB: 3, Timeout: 2 * time.Second}.options()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
}

func TestConfigOptions_Rejects(t *testing.T) {
	_, err := Config{}.options()
	assert.Error(t, err)

	_, err = Config{URL: "http://not-redis"}.options()
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	addr := mr.Addr()
	client, err := Connect(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
