package order

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type of orders
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderSubmitted    = "OrderSubmitted"
	EventTypeOrderStateChanged = "OrderStateChanged"
	EventTypeOrderItemSaved    = "OrderItemSaved"
	EventTypeOrderItemDeleted  = "OrderItemDeleted"
)

// OrderSubmittedEvent is published after checkout created an order
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Number  string    `json:"number"`
}

// NewOrderSubmittedEvent creates a new OrderSubmittedEvent
func NewOrderSubmittedEvent(o *Order) *OrderSubmittedEvent {
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSubmitted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Number:          o.Number,
	}
}

// OrderStateChangedEvent is published when the order state changed
type OrderStateChangedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	State   State     `json:"state"`
}

// NewOrderStateChangedEvent creates a new OrderStateChangedEvent
func NewOrderStateChangedEvent(o *Order) *OrderStateChangedEvent {
	return &OrderStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStateChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		State:           o.State,
	}
}

// OrderItemEvent is published when an order item is saved or deleted
type OrderItemEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID  `json:"order_id"`
	ItemID    uuid.UUID  `json:"item_id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

func newOrderItemEvent(eventType string, orderID uuid.UUID, item Item) *OrderItemEvent {
	return &OrderItemEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, orderID),
		OrderID:         orderID,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
	}
}

// NewOrderItemSavedEvent creates a new saved event for an item
func NewOrderItemSavedEvent(orderID uuid.UUID, item Item) *OrderItemEvent {
	return newOrderItemEvent(EventTypeOrderItemSaved, orderID, item)
}

// NewOrderItemDeletedEvent creates a new deleted event for an item
func NewOrderItemDeletedEvent(orderID uuid.UUID, item Item) *OrderItemEvent {
	return newOrderItemEvent(EventTypeOrderItemDeleted, orderID, item)
}
