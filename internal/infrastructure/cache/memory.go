package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lfs/storefront/internal/application/caching"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// StatsRecorder counts hits and misses per cache tier
type StatsRecorder interface {
	CacheHit(tier string)
	CacheMiss(tier string)
}

// Stats is a snapshot of the hit counters of a store
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is a process local cache. It is used alone for single
// instance deployments and as L1 in front of Redis.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	maxEntries int
	defaultTTL time.Duration
	recorder   StatsRecorder
	logger     *zap.Logger
	now        func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithMaxEntries bounds the store; when full, expired entries are dropped
// first and then an arbitrary entry is evicted.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxEntries = n
	}
}

// WithDefaultTTL is used for Set calls with a zero ttl
func WithDefaultTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.defaultTTL = ttl
	}
}

// WithStatsRecorder reports hits and misses under the "memory" tier
func WithStatsRecorder(r StatsRecorder) MemoryOption {
	return func(s *MemoryStore) {
		s.recorder = r
	}
}

// WithMemoryLogger sets the logger
func WithMemoryLogger(logger *zap.Logger) MemoryOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// NewMemoryStore creates a MemoryStore and starts its cleanup loop.
// Close stops the loop.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		logger:  zap.NewNop(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.cleanupLoop(defaultCleanupInterval)
	return s
}

// Get implements caching.Store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && e.expired(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		ok = false
	}
	if !ok {
		s.misses.Add(1)
		if s.recorder != nil {
			s.recorder.CacheMiss("memory")
		}
		return nil, false, nil
	}
	s.hits.Add(1)
	if s.recorder != nil {
		s.recorder.CacheHit("memory")
	}
	return e.value, true, nil
}

// Set implements caching.Store
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}
	s.entries[key] = e
	return nil
}

// Delete implements caching.Store
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// DeletePrefix implements caching.Store
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Stats returns the hit counters
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Entries: n}
}

// Close stops the cleanup loop
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

func (s *MemoryStore) evictLocked() {
	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}
	for k := range s.entries {
		delete(s.entries, k)
		break
	}
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore) removeExpired() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("removed expired cache entries", zap.Int("count", removed))
	}
}

var _ caching.Store = (*MemoryStore)(nil)
