//go:build integration

package cache

import (
	"context"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"testing"
	"time"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	cache, err := NewRemoteCache(url, time.Minute)
	require.NoError(t, err)
	exerciseCache(t, cache.Cache)
}
