package criteria

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Source loads the criteria attached to an owner.
type Source interface {
	CriteriaFor(ctx context.Context, owner OwnerType, ownerID uuid.UUID) ([]Criterion, error)
}

// Owner is implemented by objects that carry a criteria list.
type Owner interface {
	CriteriaOwner() (OwnerType, uuid.UUID)
}

// Observer is told about every checked owner.
type Observer interface {
	CriteriaChecked(owner OwnerType, valid bool)
}

// Checker evaluates the stored criteria of owners.
type Checker struct {
	source   Source
	observer Observer
}

// NewChecker creates a checker reading criteria from src.
func NewChecker(src Source) *Checker {
	return &Checker{source: src}
}

// WithObserver returns a copy of the checker reporting results to o.
func (c *Checker) WithObserver(o Observer) *Checker {
	cp := *c
	cp.observer = o
	return &cp
}

// IsValid reports whether all criteria attached to the owner hold.
func (c *Checker) IsValid(ctx context.Context, owner Owner, s *Subject) (bool, error) {
	ownerType, ownerID := owner.CriteriaOwner()
	list, err := c.source.CriteriaFor(ctx, ownerType, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to load criteria for %s %s: %w", ownerType, ownerID, err)
	}
	valid := IsValid(ctx, list, s, ownerType)
	if c.observer != nil {
		c.observer.CriteriaChecked(ownerType, valid)
	}
	return valid, nil
}

// FirstValid returns the first object, in the given priority order, whose
// criteria are valid for the subject.
func FirstValid[T Owner](ctx context.Context, c *Checker, objects []T, s *Subject) (T, bool, error) {
	var zero T
	for _, obj := range objects {
		ok, err := c.IsValid(ctx, obj, s)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return obj, true, nil
		}
	}
	return zero, false, nil
}

// ValidOnly filters objects down to those whose criteria are valid, keeping order.
func ValidOnly[T Owner](ctx context.Context, c *Checker, objects []T, s *Subject) ([]T, error) {
	result := make([]T, 0, len(objects))
	for _, obj := range objects {
		ok, err := c.IsValid(ctx, obj, s)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, obj)
		}
	}
	return result, nil
}
