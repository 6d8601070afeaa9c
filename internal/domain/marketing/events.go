package marketing

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeTopseller is the aggregate type of topseller entries
const AggregateTypeTopseller = "Topseller"

// Event type constants
const (
	EventTypeTopsellerChanged = "TopsellerChanged"
	EventTypeTopsellerSaved   = "TopsellerSaved"
)

// TopsellerEvent is published when the explicit topseller changed
type TopsellerEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewTopsellerChangedEvent is raised when a topseller is moved or removed
func NewTopsellerChangedEvent(ts *Topseller) *TopsellerEvent {
	return &TopsellerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTopsellerChanged, AggregateTypeTopseller, ts.ID),
		ProductID:       ts.ProductID,
	}
}

// NewTopsellerSavedEvent is raised when a topseller is added
func NewTopsellerSavedEvent(ts *Topseller) *TopsellerEvent {
	return &TopsellerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTopsellerSaved, AggregateTypeTopseller, ts.ID),
		ProductID:       ts.ProductID,
	}
}
