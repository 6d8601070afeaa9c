package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FloatRange is an inclusive number range.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range
func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// PriceRange is an inclusive price range.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains reports whether p lies within the range
func (r PriceRange) Contains(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(r.Min) && p.LessThanOrEqual(r.Max)
}

// PropertyFilter narrows products by a property. Select and text properties
// match Value exactly, number properties match the Range.
type PropertyFilter struct {
	PropertyID uuid.UUID
	Value      string
	Range      *FloatRange
}

// IsRange returns true if the filter is a number range
func (f PropertyFilter) IsRange() bool {
	return f.Range != nil
}

// Sorting values accepted for product lists mapped to their order clause.
var sortings = map[string]string{
	"price":            "effective_price asc",
	"-price":           "effective_price desc",
	"effective_price":  "effective_price asc",
	"-effective_price": "effective_price desc",
	"name":             "name asc",
	"-name":            "name desc",
}

// OrderClause returns the order clause for a sorting value; unknown values
// yield false and are ignored by callers.
func OrderClause(sorting string) (string, bool) {
	clause, ok := sortings[sorting]
	return clause, ok
}

// FilterRepository runs the relational queries of the product filters.
type FilterRepository interface {
	// CategoryProducts returns the active non-variant products of the categories
	CategoryProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]Product, error)

	// MatchingProductIDs returns the products having a filter value for every filter
	MatchingProductIDs(ctx context.Context, productIDs []uuid.UUID, filters []PropertyFilter) ([]uuid.UUID, error)

	// Variants returns the variants of the given parents
	Variants(ctx context.Context, parentIDs []uuid.UUID, activeOnly bool) ([]Product, error)

	// FilterValues returns the filter values stored for the products
	FilterValues(ctx context.Context, productIDs []uuid.UUID) ([]ProductPropertyValue, error)

	// ProductsByIDs loads products in the order of the sorting clause
	ProductsByIDs(ctx context.Context, ids []uuid.UUID, orderClause string) ([]Product, error)
}
