package criteria

import (
	"context"

	"github.com/google/uuid"
)

// CriterionRepository persists criteria lists.
type CriterionRepository interface {
	Source

	// FindByID finds a single criterion
	FindByID(ctx context.Context, id uuid.UUID) (*Criterion, error)

	// Save creates or updates a criterion
	Save(ctx context.Context, c *Criterion) error

	// ReplaceFor replaces the whole list of an owner in one transaction
	ReplaceFor(ctx context.Context, owner OwnerType, ownerID uuid.UUID, list []Criterion) error

	// Delete removes a criterion
	Delete(ctx context.Context, id uuid.UUID) error
}
