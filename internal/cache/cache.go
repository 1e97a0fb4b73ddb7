// Package cache keeps short-lived copies of rendered page data.
package cache

import (
	"context"
	"time"
)

// Cache is safe for concurrent use. Values are raw bytes so the Redis and
// in-memory backends are interchangeable.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrCacheMiss   Error = "cache miss"
	ErrCacheClosed Error = "cache closed"
)
