package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCloseTimeout = 5 * time.Second

// InvalidationMessage tells other instances which local entries are stale.
// Either Keys or Prefix is set.
type InvalidationMessage struct {
	Origin    string   `json:"origin"`
	Keys      []string `json:"keys,omitempty"`
	Prefix    string   `json:"prefix,omitempty"`
	Timestamp int64    `json:"ts"`
}

// RedisInvalidator fans invalidations out to every instance over Redis
// Pub/Sub. Messages sent by the instance itself are ignored on receipt.
type RedisInvalidator struct {
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger

	mu       sync.Mutex
	cancelFn context.CancelFunc
	running  bool
	doneCh   chan struct{}
	doneOnce sync.Once
}

// NewRedisInvalidator creates an invalidator on an existing client
func NewRedisInvalidator(client *redis.Client, channel string, logger *zap.Logger) *RedisInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidator{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
}

// Origin is the id this instance stamps on its messages
func (i *RedisInvalidator) Origin() string { return i.origin }

// Publish sends msg to all subscribers
func (i *RedisInvalidator) Publish(ctx context.Context, msg InvalidationMessage) error {
	msg.Origin = i.origin
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation message: %w", err)
	}
	return nil
}

// Subscribe blocks and calls handle for every message of another instance
// until ctx is canceled or Close is called.
func (i *RedisInvalidator) Subscribe(ctx context.Context, handle func(InvalidationMessage)) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.channel, err)
	}
	i.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case m, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			var msg InvalidationMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message", zap.String("payload", m.Payload), zap.Error(err))
				continue
			}
			if msg.Origin == i.origin {
				continue
			}
			i.safeHandle(handle, msg)
		}
	}
}

func (i *RedisInvalidator) safeHandle(handle func(InvalidationMessage), msg InvalidationMessage) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in invalidation handler", zap.Any("panic", r))
		}
	}()
	handle(msg)
}

// Close stops a running subscription and waits for it to end
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancel := i.cancelFn
	i.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for invalidation subscription to stop")
	}
	return nil
}
