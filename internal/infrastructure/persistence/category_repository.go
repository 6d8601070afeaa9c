package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindBySlug finds a category by its slug
func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// FindByIDs finds multiple categories by their IDs
func (r *GormCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("level ASC, position ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := applyPagedFilter(r.db.WithContext(ctx).Model(&catalog.Category{}), filter, CategorySortFields, "position")
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren finds all direct children of a category
func (r *GormCategoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("position ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendants finds all descendants of a category (using materialized path)
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, categoryID uuid.UUID) ([]catalog.Category, error) {
	parent, err := r.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	var categories []catalog.Category
	// Every category whose path starts with the parent's path followed by /
	if err := r.db.WithContext(ctx).
		Where("path LIKE ?", parent.Path+"/%").
		Order("level ASC, position ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByStaticBlock finds the categories showing a static block
func (r *GormCategoryRepository) FindByStaticBlock(ctx context.Context, blockID uuid.UUID) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).Where("static_block_id = ?", blockID).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete deletes a category and its product assignments
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&productCategory{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&catalog.Category{}, "id = ?", id))
	})
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
