//go:build integration

package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.RedisConfig{Enabled: true, Host: host, Port: p}
}

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	cfg := startRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, nil, zap.NewNop())

	require.NoError(t, store.Set(ctx, "lfs-product-1", []byte("p1"), time.Hour))
	data, ok, err := store.Get(ctx, "lfs-product-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p1", string(data))

	for i := 0; i < 250; i++ {
		require.NoError(t, store.Set(ctx, "lfs-cart-"+strconv.Itoa(i), []byte("c"), time.Hour))
	}
	require.NoError(t, store.Set(ctx, "other-key", []byte("x"), time.Hour))

	require.NoError(t, store.DeletePrefix(ctx, "lfs-"))
	n, err := client.DBSize(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Delete(ctx, "other-key"))
	_, ok, err = store.Get(ctx, "other-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTieredCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	redisCfg := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cacheCfg := config.CacheConfig{
		KeyPrefix:           "lfs",
		DefaultTTL:          time.Hour,
		L1TTL:               time.Minute,
		L1MaxEntries:        100,
		Tiered:              true,
		InvalidationChannel: "storefront:test:invalidate",
	}

	a, err := New(ctx, cacheCfg, redisCfg, WithInMemoryFallback(false))
	require.NoError(t, err)
	defer a.Close()
	b, err := New(ctx, cacheCfg, redisCfg, WithInMemoryFallback(false))
	require.NoError(t, err)
	defer b.Close()

	var received sync.WaitGroup
	received.Add(1)
	var once sync.Once
	go func() {
		_ = b.invalidator.Subscribe(ctx, func(msg InvalidationMessage) {
			b.tiered.HandleInvalidation(msg)
			once.Do(received.Done)
		})
	}()
	// give the subscription time to register
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, a.Store.Set(ctx, "lfs-page-about", []byte("v1"), time.Hour))
	data, ok, err := b.Store.Get(ctx, "lfs-page-about")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, a.Store.Delete(ctx, "lfs-page-about"))
	waitTimeout(t, &received, 5*time.Second)

	_, ok, _ = b.memory.Get(ctx, "lfs-page-about")
	assert.False(t, ok, "L1 of the other instance is invalidated")
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for invalidation")
	}
}
