package shipping

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeShippingMethod is the aggregate type of shipping methods
const AggregateTypeShippingMethod = "ShippingMethod"

// EventTypeShippingMethodSaved is raised when a shipping method changed
const EventTypeShippingMethodSaved = "ShippingMethodSaved"

// ShippingMethodSavedEvent is published when a shipping method is saved
type ShippingMethodSavedEvent struct {
	shared.BaseDomainEvent
	MethodID uuid.UUID `json:"method_id"`
}

// NewShippingMethodSavedEvent creates a new ShippingMethodSavedEvent
func NewShippingMethodSavedEvent(methodID uuid.UUID) *ShippingMethodSavedEvent {
	return &ShippingMethodSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShippingMethodSaved, AggregateTypeShippingMethod, methodID),
		MethodID:        methodID,
	}
}
