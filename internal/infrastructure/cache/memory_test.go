package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}}
}

func (r *countingRecorder) CacheHit(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[tier]++
}

func (r *countingRecorder) CacheMiss(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[tier]++
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	rec := newCountingRecorder()
	s := NewMemoryStore(WithStatsRecorder(rec))
	defer s.Close()

	_, ok, err := s.Get(ctx, "lfs-shop-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "lfs-shop-1", []byte(`{"name":"x"}`), time.Minute))
	data, ok, err := s.Get(ctx, "lfs-shop-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"x"}`, string(data))

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, s.Stats())
	assert.Equal(t, 1, rec.hits["memory"])
	assert.Equal(t, 1, rec.misses["memory"])
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithDefaultTTL(time.Minute))
	defer s.Close()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), -1))

	now = now.Add(2 * time.Minute)
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok, "default ttl applies to zero ttl")
	_, ok, _ = s.Get(ctx, "b")
	assert.True(t, ok, "negative ttl never expires")
}

func TestMemoryStore_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore()
	defer s.Close()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, s.Set(ctx, "long", []byte("1"), time.Hour))
	now = now.Add(time.Minute)
	s.removeExpired()

	assert.Equal(t, 1, s.Stats().Entries)
}

func TestMemoryStore_MaxEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithMaxEntries(3))
	defer s.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour))
	}
	assert.Equal(t, 3, s.Stats().Entries)

	require.NoError(t, s.Set(ctx, "k9", []byte("w"), time.Hour))
	data, ok, _ := s.Get(ctx, "k9")
	assert.True(t, ok, "the last written key survives")
	assert.Equal(t, "w", string(data))
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	for _, k := range []string{"lfs-cart-1", "lfs-cart-items-1", "lfs-page-about", "other-page"} {
		require.NoError(t, s.Set(ctx, k, []byte("v"), time.Hour))
	}

	require.NoError(t, s.Delete(ctx, "lfs-page-about", "missing"))
	require.NoError(t, s.DeletePrefix(ctx, "lfs-"))

	assert.Equal(t, 1, s.Stats().Entries)
	_, ok, _ := s.Get(ctx, "other-page")
	assert.True(t, ok)
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
