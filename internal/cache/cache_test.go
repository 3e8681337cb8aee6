package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/cache"
	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoopCache_AlwaysMisses(t *testing.T) {
	c := cache.NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	hit, err := c.GetJSON(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, dest)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	c := cache.New(context.Background(), &config.CacheConfig{Enabled: false}, zap.NewNop())
	_, ok := c.(*cache.NoopCache)
	assert.True(t, ok)
}

func TestNew_UnreachableRedisFallsBackToNoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// port 1 is reserved and refuses connections
	c := cache.New(ctx, &config.CacheConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, zap.NewNop())
	_, ok := c.(*cache.NoopCache)
	assert.True(t, ok)
}
