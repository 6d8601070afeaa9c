package event

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/lfs/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// Observer is told about every handler invocation
type Observer interface {
	EventHandled(eventType string, err error)
}

// InMemoryEventBus dispatches domain events synchronously to the handlers
// subscribed to their type. Handlers without event types receive every
// event. A failing or panicking handler is logged and does not stop the
// others.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
	observer Observer
	logger   *zap.Logger
}

// Option configures the bus
type Option func(*InMemoryEventBus)

// WithObserver reports handler outcomes, e.g. to metrics
func WithObserver(o Observer) Option {
	return func(b *InMemoryEventBus) {
		b.observer = o
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish dispatches the events in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			err := b.dispatch(ctx, handler, event)
			if b.observer != nil {
				b.observer.EventHandled(event.EventType(), err)
			}
			if err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for the handler's own
// EventTypes when none are given.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	remove := func(h shared.EventHandler) bool { return h == handler }
	b.wildcard = slices.DeleteFunc(b.wildcard, remove)
	for t, hs := range b.handlers {
		if hs = slices.DeleteFunc(hs, remove); len(hs) == 0 {
			delete(b.handlers, t)
		} else {
			b.handlers[t] = hs
		}
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]shared.EventHandler, 0, len(b.handlers[eventType])+len(b.wildcard))
	result = append(result, b.handlers[eventType]...)
	return append(result, b.wildcard...)
}

// Start implements shared.EventBus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started")
	return nil
}

// Stop implements shared.EventBus
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
