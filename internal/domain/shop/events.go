package shop

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeShop is the aggregate type of the shop
const AggregateTypeShop = "Shop"

// Event type constants
const (
	EventTypeShopSaved   = "ShopSaved"
	EventTypeShopChanged = "ShopChanged"
)

// ShopSavedEvent is published when shop settings are saved
type ShopSavedEvent struct {
	shared.BaseDomainEvent
	ShopID uuid.UUID `json:"shop_id"`
}

// NewShopSavedEvent creates a new ShopSavedEvent
func NewShopSavedEvent(shopID uuid.UUID) *ShopSavedEvent {
	return &ShopSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopSaved, AggregateTypeShop, shopID),
		ShopID:          shopID,
	}
}

// ShopChangedEvent is published when a setting changed that affects every
// cached page.
type ShopChangedEvent struct {
	shared.BaseDomainEvent
	ShopID uuid.UUID `json:"shop_id"`
}

// NewShopChangedEvent creates a new ShopChangedEvent
func NewShopChangedEvent(shopID uuid.UUID) *ShopChangedEvent {
	return &ShopChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopChanged, AggregateTypeShop, shopID),
		ShopID:          shopID,
	}
}
