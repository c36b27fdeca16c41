// Package cache provides the byte cache used for rendered page previews.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl uses the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Error is the cache error type.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"
	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// New returns a redis cache when redisURL is set, otherwise an in-memory cache.
func New(redisURL, prefix string, defaultTTL time.Duration) (Cache, error) {
	if redisURL == "" {
		return NewMemoryCache(defaultTTL), nil
	}
	rc, err := NewRedisCache(RedisOptions{
		URL:        redisURL,
		Prefix:     prefix,
		DefaultTTL: defaultTTL,
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}
