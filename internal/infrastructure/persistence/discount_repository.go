package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/discount"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDiscountRepository implements discount.Repository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByID finds a discount with its tax
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*discount.Discount, error) {
	var d discount.Discount
	if err := r.db.WithContext(ctx).Preload("Tax").First(&d, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

// FindActive returns active discounts in creation order
func (r *GormDiscountRepository) FindActive(ctx context.Context) ([]discount.Discount, error) {
	var discounts []discount.Discount
	if err := r.db.WithContext(ctx).
		Preload("Tax").
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// Save creates or updates a discount
func (r *GormDiscountRepository) Save(ctx context.Context, d *discount.Discount) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error
}

// Delete deletes a discount
func (r *GormDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&discount.Discount{}, "id = ?", id))
}

var _ discount.Repository = (*GormDiscountRepository)(nil)
