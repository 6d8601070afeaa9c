package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormDeliveryTimeRepository implements DeliveryTimeRepository using GORM
type GormDeliveryTimeRepository struct {
	db *gorm.DB
}

// NewGormDeliveryTimeRepository creates a new GormDeliveryTimeRepository
func NewGormDeliveryTimeRepository(db *gorm.DB) *GormDeliveryTimeRepository {
	return &GormDeliveryTimeRepository{db: db}
}

// FindByID finds a delivery time by its ID
func (r *GormDeliveryTimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.DeliveryTime, error) {
	var dt catalog.DeliveryTime
	if err := r.db.WithContext(ctx).First(&dt, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &dt, nil
}

// Save creates or updates a delivery time
func (r *GormDeliveryTimeRepository) Save(ctx context.Context, dt *catalog.DeliveryTime) error {
	if dt.ID == uuid.Nil {
		dt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(dt).Error
}

// GormManufacturerRepository implements ManufacturerRepository using GORM
type GormManufacturerRepository struct {
	db *gorm.DB
}

// NewGormManufacturerRepository creates a new GormManufacturerRepository
func NewGormManufacturerRepository(db *gorm.DB) *GormManufacturerRepository {
	return &GormManufacturerRepository{db: db}
}

// FindByID finds a manufacturer by its ID
func (r *GormManufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Manufacturer, error) {
	var m catalog.Manufacturer
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

// FindAll returns the manufacturers by position
func (r *GormManufacturerRepository) FindAll(ctx context.Context) ([]catalog.Manufacturer, error) {
	var ms []catalog.Manufacturer
	if err := r.db.WithContext(ctx).Order("position ASC, name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// Save creates or updates a manufacturer
func (r *GormManufacturerRepository) Save(ctx context.Context, m *catalog.Manufacturer) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// GormStaticBlockRepository implements StaticBlockRepository using GORM
type GormStaticBlockRepository struct {
	db *gorm.DB
}

// NewGormStaticBlockRepository creates a new GormStaticBlockRepository
func NewGormStaticBlockRepository(db *gorm.DB) *GormStaticBlockRepository {
	return &GormStaticBlockRepository{db: db}
}

// FindByID finds a static block by its ID
func (r *GormStaticBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StaticBlock, error) {
	var b catalog.StaticBlock
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

// Save creates or updates a static block
func (r *GormStaticBlockRepository) Save(ctx context.Context, block *catalog.StaticBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

var (
	_ catalog.DeliveryTimeRepository = (*GormDeliveryTimeRepository)(nil)
	_ catalog.ManufacturerRepository = (*GormManufacturerRepository)(nil)
	_ catalog.StaticBlockRepository  = (*GormStaticBlockRepository)(nil)
)
