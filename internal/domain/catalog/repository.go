package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/lfs/storefront/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by its slug
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindVariants finds all variants of a product ordered by variant position
	FindVariants(ctx context.Context, parentID uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SetCategories replaces the category assignment of a product
	SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error

	// CategoryIDs returns the ids of the categories a product is assigned to
	CategoryIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by its slug
	FindBySlug(ctx context.Context, slug string) (*Category, error)

	// FindByIDs finds multiple categories by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)

	// FindAll finds all categories matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// FindChildren finds all direct children of a category
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)

	// FindDescendants finds all descendants of a category (using materialized path)
	FindDescendants(ctx context.Context, categoryID uuid.UUID) ([]Category, error)

	// FindByStaticBlock finds the categories showing a static block
	FindByStaticBlock(ctx context.Context, blockID uuid.UUID) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
}

// PropertyRepository defines the interface for properties and product values
type PropertyRepository interface {
	// FindByID finds a property with its options and steps
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// FindAll finds all properties with options and steps, ordered by position
	FindAll(ctx context.Context) ([]Property, error)

	// FindForProduct finds the properties assigned to a product
	FindForProduct(ctx context.Context, productID uuid.UUID) ([]Property, error)

	// Save creates or updates a property including its options and steps
	Save(ctx context.Context, property *Property) error

	// AssignToProduct assigns a property to a product
	AssignToProduct(ctx context.Context, productID, propertyID uuid.UUID, position int) error

	// FindValues finds the values of a product, all types when types is empty
	FindValues(ctx context.Context, productID uuid.UUID, types ...PropertyValueType) ([]ProductPropertyValue, error)

	// SaveValue creates or updates a product property value
	SaveValue(ctx context.Context, value *ProductPropertyValue) error
}

// DeliveryTimeRepository defines the interface for stored delivery times
type DeliveryTimeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryTime, error)
	Save(ctx context.Context, dt *DeliveryTime) error
}

// ManufacturerRepository defines the interface for manufacturers
type ManufacturerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error)
	FindAll(ctx context.Context) ([]Manufacturer, error)
	Save(ctx context.Context, m *Manufacturer) error
}

// StaticBlockRepository defines the interface for static blocks
type StaticBlockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StaticBlock, error)
	Save(ctx context.Context, block *StaticBlock) error
}
