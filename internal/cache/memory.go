package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the single-process backend used when no Redis URL is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	closed  bool
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, ErrCacheClosed
	}

	if !ok {
		return nil, ErrCacheMiss
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return nil, ErrCacheMiss
	}

	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.entries[key] = memoryEntry{
		value:     stored,
		expiresAt: c.now().Add(ttl),
	}

	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.entries = make(map[string]memoryEntry)

	return nil
}
