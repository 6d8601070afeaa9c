package cart

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeCart is the aggregate type of carts
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeCartChanged = "CartChanged"
	EventTypeCartDeleted = "CartDeleted"
)

// CartEvent carries the identities a cart is cached under
type CartEvent struct {
	shared.BaseDomainEvent
	CartID    uuid.UUID  `json:"cart_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
}

func newCartEvent(eventType string, c *Cart) *CartEvent {
	return &CartEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCart, c.ID),
		CartID:          c.ID,
		UserID:          c.UserID,
		SessionID:       c.SessionID,
	}
}

// NewCartChangedEvent creates the event published when items changed
func NewCartChangedEvent(c *Cart) *CartEvent {
	return newCartEvent(EventTypeCartChanged, c)
}

// NewCartDeletedEvent creates the event published when a cart is deleted
func NewCartDeletedEvent(c *Cart) *CartEvent {
	return newCartEvent(EventTypeCartDeleted, c)
}
