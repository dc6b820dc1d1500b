package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billharmony/backend/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is an in-process CacheProvider used when Redis is unavailable
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryAdapter creates an empty in-process cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get returns ErrCacheMiss for absent or expired keys
func (m *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && m.now().After(e.expiresAt)) {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	return e.value, nil
}

// Set stores value; a non-positive expiration never expires
func (m *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		e.expiresAt = m.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes key
func (m *MemoryAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key is present and unexpired
func (m *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	return err == nil, nil
}
