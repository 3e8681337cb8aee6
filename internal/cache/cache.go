// Package cache stores JSON payloads with a TTL. Redis backs it in deployed
// environments; the no-op cache is used when redis is disabled.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values by key
type Cache interface {
	// GetJSON decodes the cached value into dest. It reports false on a miss.
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// NoopCache never stores anything
type NoopCache struct{}

// NewNoopCache returns a cache that always misses
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (NoopCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (NoopCache) Delete(ctx context.Context, key string) error { return nil }

func (NoopCache) Ping(ctx context.Context) error { return nil }

func (NoopCache) Close() error { return nil }
