package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []InvalidationMessage
	// peers receive every published message, like other instances would
	peers []*TieredStore
}

func (p *recordingPublisher) Publish(_ context.Context, msg InvalidationMessage) error {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	peers := p.peers
	p.mu.Unlock()
	for _, peer := range peers {
		peer.HandleInvalidation(msg)
	}
	return nil
}

func TestTieredStore(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStore()
	defer shared.Close()

	l1a, l1b := NewMemoryStore(), NewMemoryStore()
	defer l1a.Close()
	defer l1b.Close()

	pubA := &recordingPublisher{}
	a := NewTieredStore(l1a, shared, pubA, time.Minute, zap.NewNop())
	b := NewTieredStore(l1b, shared, nil, time.Minute, zap.NewNop())
	pubA.peers = []*TieredStore{b}

	t.Run("read through populates L1", func(t *testing.T) {
		require.NoError(t, shared.Set(ctx, "lfs-product-1", []byte("p1"), time.Hour))

		data, ok, err := b.Get(ctx, "lfs-product-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "p1", string(data))

		_, ok, _ = l1b.Get(ctx, "lfs-product-1")
		assert.True(t, ok)
	})

	t.Run("writes go to both tiers", func(t *testing.T) {
		require.NoError(t, a.Set(ctx, "lfs-page-about", []byte("about"), time.Hour))
		_, ok, _ := l1a.Get(ctx, "lfs-page-about")
		assert.True(t, ok)
		_, ok, _ = shared.Get(ctx, "lfs-page-about")
		assert.True(t, ok)
	})

	t.Run("deletes reach the L1 of other instances", func(t *testing.T) {
		require.NoError(t, a.Delete(ctx, "lfs-product-1"))

		_, ok, _ := b.Get(ctx, "lfs-product-1")
		assert.False(t, ok)
		require.Len(t, pubA.messages, 1)
		assert.Equal(t, []string{"lfs-product-1"}, pubA.messages[0].Keys)
	})

	t.Run("prefix deletes are fanned out", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "lfs-cart-1", []byte("c"), time.Hour))
		require.NoError(t, a.DeletePrefix(ctx, "lfs-"))

		_, ok, _ := b.Get(ctx, "lfs-cart-1")
		assert.False(t, ok)
		assert.Equal(t, "lfs-", pubA.messages[len(pubA.messages)-1].Prefix)
	})

	t.Run("nothing to delete publishes nothing", func(t *testing.T) {
		before := len(pubA.messages)
		require.NoError(t, a.Delete(ctx))
		assert.Len(t, pubA.messages, before)
	})
}

func TestTieredStore_ShortTTLBoundsL1(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l1 := NewMemoryStore()
	defer l1.Close()
	l1.now = func() time.Time { return now }
	l2 := NewMemoryStore()
	defer l2.Close()

	s := NewTieredStore(l1, l2, nil, time.Hour, nil)
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))

	now = now.Add(time.Minute)
	_, ok, _ := l1.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	cacheCfg := config.CacheConfig{KeyPrefix: "lfs", DefaultTTL: time.Hour, L1TTL: time.Minute, L1MaxEntries: 100}

	t.Run("memory without redis", func(t *testing.T) {
		c, err := New(ctx, cacheCfg, config.RedisConfig{})
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &MemoryStore{}, c.Store)
		c.Start(ctx)
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		redisCfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		c, err := New(ctx, cacheCfg, redisCfg)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &MemoryStore{}, c.Store)
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		redisCfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := New(ctx, cacheCfg, redisCfg, WithInMemoryFallback(false))
		assert.ErrorContains(t, err, "redis required")
	})
}
