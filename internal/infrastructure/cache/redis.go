package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultScanBatchSize = 100

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore is the shared cache of all instances. The caller owns the
// client.
type RedisStore struct {
	client   *redis.Client
	recorder StatsRecorder
	logger   *zap.Logger
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client *redis.Client, recorder StatsRecorder, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, recorder: recorder, logger: logger}
}

// Get implements caching.Store
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		if s.recorder != nil {
			s.recorder.CacheMiss("redis")
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if s.recorder != nil {
		s.recorder.CacheHit("redis")
	}
	return data, true, nil
}

// Set implements caching.Store; a zero ttl keeps the key forever
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements caching.Store
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeletePrefix scans for prefix* and deletes the matches batch by batch
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s*: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.logger.Debug("deleted cache keys by prefix", zap.String("prefix", prefix), zap.Int("count", deleted))
	return nil
}

var _ caching.Store = (*RedisStore)(nil)
