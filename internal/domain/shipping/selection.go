package shipping

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

// FirstValidMethod returns the valid method with the highest priority.
// The default method is the first valid method evaluated against the cart.
func FirstValidMethod(ctx context.Context, checker *criteria.Checker, active []Method, s *criteria.Subject) (*Method, error) {
	m, ok, err := criteria.FirstValid(ctx, checker, active, s)
	if err != nil || !ok {
		return nil, err
	}
	return &m, nil
}

// SelectedMethod returns the customer's explicit choice when it is an
// active method, otherwise the default method.
func SelectedMethod(ctx context.Context, checker *criteria.Checker, active []Method, selectedID uuid.UUID, s *criteria.Subject) (*Method, error) {
	if selectedID != uuid.Nil {
		for i := range active {
			if active[i].ID == selectedID {
				return &active[i], nil
			}
		}
	}
	return FirstValidMethod(ctx, checker, active, s)
}

// UpdateToValid replaces a selection that is not valid any more with the
// default method. The second result reports whether the selection changed.
func UpdateToValid(ctx context.Context, checker *criteria.Checker, active []Method, selectedID uuid.UUID, s *criteria.Subject) (uuid.UUID, bool, error) {
	valid, err := ValidMethods(ctx, checker, active, s)
	if err != nil {
		return selectedID, false, err
	}
	for _, m := range valid {
		if m.ID == selectedID {
			return selectedID, false, nil
		}
	}
	def, err := FirstValidMethod(ctx, checker, active, s)
	if err != nil {
		return selectedID, false, err
	}
	if def == nil {
		return uuid.Nil, selectedID != uuid.Nil, nil
	}
	return def.ID, def.ID != selectedID, nil
}

// FirstValidPrice returns the first additional price of m whose criteria hold.
func FirstValidPrice(ctx context.Context, checker *criteria.Checker, m *Method, s *criteria.Subject) (*MethodPrice, error) {
	prices := make([]MethodPrice, 0, len(m.Prices))
	for _, p := range m.Prices {
		if p.Active {
			prices = append(prices, p)
		}
	}
	sortPrices(prices)
	p, ok, err := criteria.FirstValid(ctx, checker, prices, s)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func sortPrices(prices []MethodPrice) {
	slices.SortStableFunc(prices, func(a, b MethodPrice) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
}
