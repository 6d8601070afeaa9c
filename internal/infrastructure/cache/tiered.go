package cache

import (
	"context"
	"time"

	"github.com/lfs/storefront/internal/application/caching"
	"go.uber.org/zap"
)

// Publisher sends invalidations to the other instances
type Publisher interface {
	Publish(ctx context.Context, msg InvalidationMessage) error
}

// TieredStore reads L1 then L2 and writes both. Deletions go to both tiers
// and are published so that other instances drop their L1 entries.
type TieredStore struct {
	l1        *MemoryStore
	l2        caching.Store
	publisher Publisher
	l1TTL     time.Duration
	logger    *zap.Logger
}

// NewTieredStore creates a tiered store. publisher may be nil for a single
// instance.
func NewTieredStore(l1 *MemoryStore, l2 caching.Store, publisher Publisher, l1TTL time.Duration, logger *zap.Logger) *TieredStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredStore{l1: l1, l2: l2, publisher: publisher, l1TTL: l1TTL, logger: logger}
}

// Get implements caching.Store
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, _ := s.l1.Get(ctx, key); ok {
		return data, true, nil
	}
	data, ok, err := s.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = s.l1.Set(ctx, key, data, s.l1TTL)
	return data, true, nil
}

// Set implements caching.Store. L1 keeps the entry for at most the L1 ttl.
func (s *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := s.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return s.l1.Set(ctx, key, value, l1TTL)
}

// Delete implements caching.Store
func (s *TieredStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.l2.Delete(ctx, keys...); err != nil {
		return err
	}
	_ = s.l1.Delete(ctx, keys...)
	s.publish(ctx, InvalidationMessage{Keys: keys})
	return nil
}

// DeletePrefix implements caching.Store
func (s *TieredStore) DeletePrefix(ctx context.Context, prefix string) error {
	if err := s.l2.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	_ = s.l1.DeletePrefix(ctx, prefix)
	s.publish(ctx, InvalidationMessage{Prefix: prefix})
	return nil
}

// HandleInvalidation drops the L1 entries named by a message of another
// instance. L2 is shared and already up to date.
func (s *TieredStore) HandleInvalidation(msg InvalidationMessage) {
	ctx := context.Background()
	if msg.Prefix != "" {
		_ = s.l1.DeletePrefix(ctx, msg.Prefix)
	}
	if len(msg.Keys) > 0 {
		_ = s.l1.Delete(ctx, msg.Keys...)
	}
	s.logger.Debug("Invalidated L1 cache",
		zap.String("origin", msg.Origin),
		zap.String("prefix", msg.Prefix),
		zap.Int("keys", len(msg.Keys)))
}

func (s *TieredStore) publish(ctx context.Context, msg InvalidationMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish cache invalidation", zap.Error(err))
	}
}

var _ caching.Store = (*TieredStore)(nil)
