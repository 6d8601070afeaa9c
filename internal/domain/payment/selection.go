package payment

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
)

// ValidMethods returns the methods whose criteria hold, keeping priority order.
func ValidMethods(ctx context.Context, checker *criteria.Checker, active []Method, s *criteria.Subject) ([]Method, error) {
	return criteria.ValidOnly(ctx, checker, active, s)
}

// DefaultMethod returns the first valid method
func DefaultMethod(ctx context.Context, checker *criteria.Checker, active []Method, s *criteria.Subject) (*Method, error) {
	m, ok, err := criteria.FirstValid(ctx, checker, active, s)
	if err != nil || !ok {
		return nil, err
	}
	return &m, nil
}

// SelectedMethod returns the explicit selection if it is active, else the default.
func SelectedMethod(ctx context.Context, checker *criteria.Checker, active []Method, selectedID uuid.UUID, s *criteria.Subject) (*Method, error) {
	if selectedID != uuid.Nil {
		if i := slices.IndexFunc(active, func(m Method) bool { return m.ID == selectedID }); i >= 0 {
			return &active[i], nil
		}
	}
	return DefaultMethod(ctx, checker, active, s)
}

// UpdateToValid replaces an invalid selection with the default method.
func UpdateToValid(ctx context.Context, checker *criteria.Checker, active []Method, selectedID uuid.UUID, s *criteria.Subject) (uuid.UUID, bool, error) {
	valid, err := ValidMethods(ctx, checker, active, s)
	if err != nil {
		return selectedID, false, err
	}
	if slices.ContainsFunc(valid, func(m Method) bool { return m.ID == selectedID }) {
		return selectedID, false, nil
	}
	def, err := DefaultMethod(ctx, checker, active, s)
	if err != nil {
		return selectedID, false, err
	}
	if def == nil {
		return uuid.Nil, selectedID != uuid.Nil, nil
	}
	return def.ID, def.ID != selectedID, nil
}

// FirstValidPrice returns the first active additional price whose criteria hold.
func FirstValidPrice(ctx context.Context, checker *criteria.Checker, m *Method, s *criteria.Subject) (*MethodPrice, error) {
	prices := slices.DeleteFunc(slices.Clone(m.Prices), func(p MethodPrice) bool { return !p.Active })
	slices.SortStableFunc(prices, func(a, b MethodPrice) int { return cmp.Compare(a.Priority, b.Priority) })
	p, ok, err := criteria.FirstValid(ctx, checker, prices, s)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}
