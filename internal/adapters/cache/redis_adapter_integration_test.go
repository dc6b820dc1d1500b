//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/billharmony/backend/internal/domain/providers"
	redisclient "github.com/billharmony/backend/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAdapter_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redisclient.NewClientFromRedis(redis.NewClient(&redis.Options{Addr: addr}))
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "test:")

	_, err := adapter.Get(ctx, "missing")
	assert.True(t, errors.Is(err, providers.ErrCacheMiss))

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 60))
	got, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := adapter.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, "k"))
	exists, err = adapter.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}
