package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

const salesBatchSize = 500

// GormMarketingRepository implements marketing.Repository using GORM
type GormMarketingRepository struct {
	db *gorm.DB
}

// NewGormMarketingRepository creates a new GormMarketingRepository
func NewGormMarketingRepository(db *gorm.DB) *GormMarketingRepository {
	return &GormMarketingRepository{db: db}
}

// Topseller returns explicit topseller of active products by position
func (r *GormMarketingRepository) Topseller(ctx context.Context) ([]marketing.Topseller, error) {
	var list []marketing.Topseller
	if err := r.explicit(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// TopsellerInCategories returns explicit topseller of active products
// assigned to one of the categories
func (r *GormMarketingRepository) TopsellerInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]marketing.Topseller, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var list []marketing.Topseller
	if err := r.explicit(ctx).
		Where("topsellers.product_id IN (?)", r.assignedTo(categoryIDs)).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// BestSelling returns product ids by sales, highest first. Without
// categories all active products are ranked; limit <= 0 returns all.
func (r *GormMarketingRepository) BestSelling(ctx context.Context, categoryIDs []uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := r.db.WithContext(ctx).
		Model(&marketing.ProductSales{}).
		Joins("JOIN products p ON p.id = product_sales.product_id").
		Where("p.active = ?", true).
		Order("product_sales.sales DESC")
	if len(categoryIDs) > 0 {
		query = query.Where("product_sales.product_id IN (?)", r.assignedTo(categoryIDs))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var ids []uuid.UUID
	if err := query.Pluck("product_sales.product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceSales replaces all product sales
func (r *GormMarketingRepository) ReplaceSales(ctx context.Context, sales []marketing.ProductSales) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&marketing.ProductSales{}).Error; err != nil {
			return err
		}
		if len(sales) == 0 {
			return nil
		}
		return tx.CreateInBatches(sales, salesBatchSize).Error
	})
}

// FindTopseller returns the explicit topseller entry of a product
func (r *GormMarketingRepository) FindTopseller(ctx context.Context, productID uuid.UUID) (*marketing.Topseller, error) {
	var ts marketing.Topseller
	if err := r.db.WithContext(ctx).First(&ts, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ts, nil
}

// SaveTopseller creates or updates an explicit topseller
func (r *GormMarketingRepository) SaveTopseller(ctx context.Context, ts *marketing.Topseller) error {
	return r.db.WithContext(ctx).Save(ts).Error
}

// DeleteTopseller removes an explicit topseller
func (r *GormMarketingRepository) DeleteTopseller(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&marketing.Topseller{}, "id = ?", id))
}

func (r *GormMarketingRepository) explicit(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("JOIN products p ON p.id = topsellers.product_id").
		Where("p.active = ?", true).
		Order("topsellers.position ASC")
}

func (r *GormMarketingRepository) assignedTo(categoryIDs []uuid.UUID) *gorm.DB {
	return r.db.Model(&productCategory{}).Select("product_id").Where("category_id IN ?", categoryIDs)
}

var _ marketing.Repository = (*GormMarketingRepository)(nil)
