package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the configured store plus the resources behind it.
type Cache struct {
	Store caching.Store

	memory      *MemoryStore
	tiered      *TieredStore
	client      *redis.Client
	invalidator *RedisInvalidator
	logger      *zap.Logger
}

// FactoryOption configures New
type FactoryOption func(*factory)

type factory struct {
	recorder              StatsRecorder
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WithRecorder reports hits and misses of every tier
func WithRecorder(r StatsRecorder) FactoryOption {
	return func(f *factory) {
		f.recorder = r
	}
}

// WithLogger sets the logger of the stores
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the memory store. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) {
		f.allowInMemoryFallback = allow
	}
}

// New builds the store selected by the configuration:
// memory without Redis, Redis alone, or memory in front of Redis with
// Pub/Sub invalidation when cache.tiered is set.
func New(ctx context.Context, cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) (*Cache, error) {
	f := &factory{logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(f)
	}
	memory := func() *MemoryStore {
		return NewMemoryStore(
			WithMaxEntries(cacheCfg.L1MaxEntries),
			WithDefaultTTL(cacheCfg.DefaultTTL),
			WithStatsRecorder(f.recorder),
			WithMemoryLogger(f.logger),
		)
	}

	if !redisCfg.Enabled {
		m := memory()
		f.logger.Info("using in-memory cache")
		return &Cache{Store: m, memory: m, logger: f.logger}, nil
	}

	client, err := NewRedisClient(ctx, redisCfg)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
			"Other instances will not see invalidations.", zap.Error(err))
		m := memory()
		return &Cache{Store: m, memory: m, logger: f.logger}, nil
	}

	l2 := NewRedisStore(client, f.recorder, f.logger)
	if !cacheCfg.Tiered {
		f.logger.Info("using Redis cache", zap.String("addr", redisCfg.Addr()))
		return &Cache{Store: l2, client: client, logger: f.logger}, nil
	}

	l1 := memory()
	invalidator := NewRedisInvalidator(client, cacheCfg.InvalidationChannel, f.logger)
	tiered := NewTieredStore(l1, l2, invalidator, cacheCfg.L1TTL, f.logger)
	f.logger.Info("using tiered cache",
		zap.String("addr", redisCfg.Addr()),
		zap.String("channel", cacheCfg.InvalidationChannel))
	return &Cache{
		Store:       tiered,
		memory:      l1,
		tiered:      tiered,
		client:      client,
		invalidator: invalidator,
		logger:      f.logger,
	}, nil
}

// Start listens for invalidations of other instances in the background.
// It is a no-op unless the cache is tiered.
func (c *Cache) Start(ctx context.Context) {
	if c.invalidator == nil {
		return
	}
	go func() {
		err := c.invalidator.Subscribe(ctx, c.tiered.HandleInvalidation)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("cache invalidation subscription ended", zap.Error(err))
		}
	}()
}

// Close releases the subscription, the cleanup loop and the Redis client
func (c *Cache) Close() error {
	var errs []error
	if c.invalidator != nil {
		errs = append(errs, c.invalidator.Close())
	}
	if c.memory != nil {
		errs = append(errs, c.memory.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Ping checks the Redis connection; stores without Redis are always up
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
