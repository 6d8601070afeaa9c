package caching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"go.uber.org/zap"
)

// CriteriaSource caches the criteria lists of owners. Entries are evicted by
// the Invalidator on CriteriaSaved.
type CriteriaSource struct {
	next   criteria.Source
	store  Store
	keys   Keys
	ttl    time.Duration
	logger *zap.Logger
}

// NewCriteriaSource wraps next with a cache
func NewCriteriaSource(next criteria.Source, store Store, keys Keys, ttl time.Duration, logger *zap.Logger) *CriteriaSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriteriaSource{next: next, store: store, keys: keys, ttl: ttl, logger: logger}
}

// CriteriaFor implements criteria.Source
func (s *CriteriaSource) CriteriaFor(ctx context.Context, owner criteria.OwnerType, ownerID uuid.UUID) ([]criteria.Criterion, error) {
	return Remember(ctx, s.store, s.logger, s.keys.Criteria(ownerID, string(owner)), s.ttl, func() ([]criteria.Criterion, error) {
		return s.next.CriteriaFor(ctx, owner, ownerID)
	})
}

var _ criteria.Source = (*CriteriaSource)(nil)
