package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/pricing"
	"gorm.io/gorm"
)

// GormTaxRepository implements TaxRepository using GORM
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// FindByID finds a tax by its ID
func (r *GormTaxRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Tax, error) {
	var tax pricing.Tax
	if err := r.db.WithContext(ctx).First(&tax, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &tax, nil
}

// FindAll returns all taxes by rate
func (r *GormTaxRepository) FindAll(ctx context.Context) ([]pricing.Tax, error) {
	var taxes []pricing.Tax
	if err := r.db.WithContext(ctx).Order("rate ASC").Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}

// Save creates or updates a tax
func (r *GormTaxRepository) Save(ctx context.Context, tax *pricing.Tax) error {
	return r.db.WithContext(ctx).Save(tax).Error
}

// GormCustomerTaxRepository implements CustomerTaxRepository using GORM
type GormCustomerTaxRepository struct {
	db *gorm.DB
}

// NewGormCustomerTaxRepository creates a new GormCustomerTaxRepository
func NewGormCustomerTaxRepository(db *gorm.DB) *GormCustomerTaxRepository {
	return &GormCustomerTaxRepository{db: db}
}

// FindAll returns all customer taxes ordered by position
func (r *GormCustomerTaxRepository) FindAll(ctx context.Context) ([]pricing.CustomerTax, error) {
	var taxes []pricing.CustomerTax
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}

// Save creates or updates a customer tax
func (r *GormCustomerTaxRepository) Save(ctx context.Context, tax *pricing.CustomerTax) error {
	return r.db.WithContext(ctx).Save(tax).Error
}

var (
	_ pricing.TaxRepository         = (*GormTaxRepository)(nil)
	_ pricing.CustomerTaxRepository = (*GormCustomerTaxRepository)(nil)
)
