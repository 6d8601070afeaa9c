package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productCategory is a row of the product/category join table
type productCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (productCategory) TableName() string {
	return "product_categories"
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.withDeliveryTimes(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.withDeliveryTimes(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.withDeliveryTimes(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := applyPagedFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter, ProductSortFields, "name")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applySearch(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindVariants finds all variants of a product ordered by variant position
func (r *GormProductRepository) FindVariants(ctx context.Context, parentID uuid.UUID) ([]catalog.Product, error) {
	var variants []catalog.Product
	if err := r.withDeliveryTimes(ctx).
		Where("parent_id = ?", parentID).
		Order("variant_position ASC, name ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Save creates or updates a product. Category assignment is kept, see
// SetCategories.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// SetCategories replaces the category assignment of a product
func (r *GormProductRepository) SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&productCategory{}).Error; err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return nil
		}
		rows := make([]productCategory, 0, len(categoryIDs))
		for _, id := range categoryIDs {
			rows = append(rows, productCategory{ProductID: productID, CategoryID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// CategoryIDs returns the ids of the categories a product is assigned to
func (r *GormProductRepository) CategoryIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&productCategory{}).
		Where("product_id = ?", productID).
		Pluck("category_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete deletes a product with its category assignment and values
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&productCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&catalog.ProductPropertyValue{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&catalog.Product{}, "id = ?", id))
	})
}

func (r *GormProductRepository) withDeliveryTimes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("DeliveryTime").Preload("OrderTime")
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
