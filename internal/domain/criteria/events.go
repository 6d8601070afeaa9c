package criteria

import (
	"github.com/google/uuid"

	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypeCriteria is the aggregate type of criteria lists
const AggregateTypeCriteria = "Criteria"

// EventTypeCriteriaSaved is published after the criteria of an owner change
const EventTypeCriteriaSaved = "CriteriaSaved"

// CriteriaSavedEvent is published when a criteria list of an owner is saved
type CriteriaSavedEvent struct {
	shared.BaseDomainEvent
	OwnerType OwnerType `json:"owner_type"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

// NewCriteriaSavedEvent creates a new CriteriaSavedEvent
func NewCriteriaSavedEvent(owner OwnerType, ownerID uuid.UUID) *CriteriaSavedEvent {
	return &CriteriaSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCriteriaSaved, AggregateTypeCriteria, ownerID),
		OwnerType:       owner,
		OwnerID:         ownerID,
	}
}
