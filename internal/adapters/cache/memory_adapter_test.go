package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billharmony/backend/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryAdapter()
	m.now = func() time.Time { return now }

	_, err := m.Get(ctx, "k")
	assert.True(t, errors.Is(err, providers.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(11 * time.Second)
	exists, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists, "entry expired")

	require.NoError(t, m.Set(ctx, "forever", []byte("x"), 0))
	now = now.Add(24 * time.Hour)
	exists, _ = m.Exists(ctx, "forever")
	assert.True(t, exists)

	require.NoError(t, m.Delete(ctx, "forever"))
	exists, _ = m.Exists(ctx, "forever")
	assert.False(t, exists)
}
