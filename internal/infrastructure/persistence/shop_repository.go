package persistence

import (
	"context"

	"github.com/lfs/storefront/internal/domain/page"
	"github.com/lfs/storefront/internal/domain/shop"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShopRepository implements shop.Repository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// Default returns the first shop created
func (r *GormShopRepository) Default(ctx context.Context) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.db.WithContext(ctx).
		Preload("DeliveryTime").
		Order("created_at ASC").
		First(&s).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, s *shop.Shop) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

// GormPageRepository implements page.Repository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// FindBySlug finds a page by its slug
func (r *GormPageRepository) FindBySlug(ctx context.Context, slug string) (*page.Page, error) {
	var p page.Page
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// Save creates or updates a page
func (r *GormPageRepository) Save(ctx context.Context, p *page.Page) error {
	return r.db.WithContext(ctx).Save(p).Error
}

var (
	_ shop.Repository = (*GormShopRepository)(nil)
	_ page.Repository = (*GormPageRepository)(nil)
)
