package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "revenue-forecast:"

// NewRedisClient creates a redis client from config
func NewRedisClient(cfg *config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
}

// RedisCache is a Cache backed by redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

// New returns a RedisCache when caching is enabled and reachable, otherwise a NoopCache
func New(ctx context.Context, cfg *config.CacheConfig, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		logger.Info("Cache disabled, using no-op cache")
		return NewNoopCache()
	}

	c := NewRedisCache(NewRedisClient(cfg), logger)
	if err := c.Ping(ctx); err != nil {
		logger.Warn("Redis unreachable, using no-op cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		_ = c.Close()
		return NewNoopCache()
	}

	logger.Info("Redis cache connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return c
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyPrefix+key).Err()
}

// Ping checks the redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Stats returns the client pool statistics
func (c *RedisCache) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
