package marketing

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// DefaultLimit is the number of topseller shown when no limit is given
const DefaultLimit = 5

// MaxLimit is the largest topseller list served
const MaxLimit = 50

// Topseller is a product explicitly placed in the topseller list.
type Topseller struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Position  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Topseller) TableName() string {
	return "topsellers"
}

// NewTopseller places a product at a one based position
func NewTopseller(productID uuid.UUID, position int) (*Topseller, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &Topseller{ID: uuid.New(), ProductID: productID, Position: position}, nil
}

// ProductSales is the total amount sold of a product. Variant sales are
// counted for their parent.
type ProductSales struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sales     float64   `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductSales) TableName() string {
	return "product_sales"
}

// SoldItem is an order item reduced to what sales counting needs.
type SoldItem struct {
	ProductID uuid.UUID
	// ParentID is set when the product is a variant
	ParentID *uuid.UUID
	// Orphan marks variants whose parent no longer exists
	Orphan bool
	Amount float64
}

// CalculateSales aggregates sold amounts by product, counting variants for
// their parent. The result is ordered by sales, highest first.
func CalculateSales(items []SoldItem) []ProductSales {
	totals := make(map[uuid.UUID]float64)
	order := make([]uuid.UUID, 0)
	for _, item := range items {
		if item.Orphan {
			continue
		}
		id := item.ProductID
		if item.ParentID != nil {
			id = *item.ParentID
		}
		if _, ok := totals[id]; !ok {
			order = append(order, id)
		}
		totals[id] += item.Amount
	}
	result := make([]ProductSales, 0, len(order))
	for _, id := range order {
		result = append(result, ProductSales{ProductID: id, Sales: totals[id]})
	}
	slices.SortStableFunc(result, func(a, b ProductSales) int {
		return cmp.Compare(b.Sales, a.Sales)
	})
	return result
}

// MergeExplicit inserts explicit topseller into a list of best selling
// products. Each explicit entry is removed from its old place and inserted
// at position-1, clamped to the list bounds. The result is cut to limit.
func MergeExplicit(bySales []uuid.UUID, explicit []Topseller, limit int) []uuid.UUID {
	result := slices.Clone(bySales)
	for _, ts := range explicit {
		if i := slices.Index(result, ts.ProductID); i >= 0 {
			result = slices.Delete(result, i, i+1)
		}
		pos := max(ts.Position-1, 0)
		pos = min(pos, len(result))
		result = slices.Insert(result, pos, ts.ProductID)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Repository defines the interface for marketing persistence
type Repository interface {
	// Topseller returns explicit topseller of active products by position
	Topseller(ctx context.Context) ([]Topseller, error)

	// TopsellerInCategories returns explicit topseller of active products
	// assigned to one of the categories
	TopsellerInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]Topseller, error)

	// BestSelling returns product ids of the categories by sales, highest first
	BestSelling(ctx context.Context, categoryIDs []uuid.UUID, limit int) ([]uuid.UUID, error)

	// ReplaceSales replaces all product sales
	ReplaceSales(ctx context.Context, sales []ProductSales) error

	// FindTopseller returns the explicit topseller entry of a product
	FindTopseller(ctx context.Context, productID uuid.UUID) (*Topseller, error)
	SaveTopseller(ctx context.Context, ts *Topseller) error
	DeleteTopseller(ctx context.Context, id uuid.UUID) error
}
