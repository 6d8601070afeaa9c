package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

const defaultProductOrder = "name asc"

// GormFilterRepository runs the product filter queries with GORM
type GormFilterRepository struct {
	db *gorm.DB
}

// NewGormFilterRepository creates a new GormFilterRepository
func NewGormFilterRepository(db *gorm.DB) *GormFilterRepository {
	return &GormFilterRepository{db: db}
}

// CategoryProducts returns the active non-variant products of the categories
func (r *GormFilterRepository) CategoryProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]catalog.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	assigned := r.db.Model(&productCategory{}).Select("product_id").Where("category_id IN ?", categoryIDs)

	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", assigned).
		Where("active = ? AND sub_type <> ?", true, catalog.SubTypeVariant).
		Order(defaultProductOrder).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// MatchingProductIDs returns the products having a filter value for every
// filtered property. Values are matched per property and the products are
// grouped so that only those matching all properties remain.
func (r *GormFilterRepository) MatchingProductIDs(ctx context.Context, productIDs []uuid.UUID, filters []catalog.PropertyFilter) ([]uuid.UUID, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	if len(filters) == 0 {
		return productIDs, nil
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters)*3)
	properties := make(map[uuid.UUID]struct{}, len(filters))
	for _, f := range filters {
		properties[f.PropertyID] = struct{}{}
		if f.IsRange() {
			conds = append(conds, "(property_id = ? AND value_as_float >= ? AND value_as_float <= ?)")
			args = append(args, f.PropertyID, f.Range.Min, f.Range.Max)
		} else {
			conds = append(conds, "(property_id = ? AND value = ?)")
			args = append(args, f.PropertyID, f.Value)
		}
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&catalog.ProductPropertyValue{}).
		Where("type = ?", catalog.PropertyValueFilter).
		Where("product_id IN ?", productIDs).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Group("product_id").
		Having("COUNT(DISTINCT property_id) = ?", len(properties)).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Variants returns the variants of the given parents by variant position
func (r *GormFilterRepository) Variants(ctx context.Context, parentIDs []uuid.UUID, activeOnly bool) ([]catalog.Product, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("parent_id IN ?", parentIDs)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var variants []catalog.Product
	if err := query.Order("variant_position ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FilterValues returns the filter values stored for the products
func (r *GormFilterRepository) FilterValues(ctx context.Context, productIDs []uuid.UUID) ([]catalog.ProductPropertyValue, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var values []catalog.ProductPropertyValue
	if err := r.db.WithContext(ctx).
		Where("type = ? AND product_id IN ?", catalog.PropertyValueFilter, productIDs).
		Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// ProductsByIDs loads products in the order of the sorting clause, by name
// when the clause is empty
func (r *GormFilterRepository) ProductsByIDs(ctx context.Context, ids []uuid.UUID, orderClause string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if orderClause == "" {
		orderClause = defaultProductOrder
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order(orderClause).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

var _ catalog.FilterRepository = (*GormFilterRepository)(nil)
