package catalog

import (
	"github.com/google/uuid"

	"github.com/lfs/storefront/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProduct     = "Product"
	AggregateTypeCategory    = "Category"
	AggregateTypeStaticBlock = "StaticBlock"
)

// Event type constants
const (
	EventTypeProductChanged   = "ProductChanged"
	EventTypeProductSaved     = "ProductSaved"
	EventTypeReviewAdded      = "ReviewAdded"
	EventTypeCategorySaved    = "CategorySaved"
	EventTypeCategoryDeleted  = "CategoryDeleted"
	EventTypeCategoryChanged  = "CategoryChanged"
	EventTypeStaticBlockSaved = "StaticBlockSaved"
)

// ProductChangedEvent is published when data of a product or variant changed
type ProductChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID  `json:"product_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Slug      string     `json:"slug"`
}

// NewProductChangedEvent creates a new ProductChangedEvent
func NewProductChangedEvent(p *Product) *ProductChangedEvent {
	return &ProductChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		ParentID:        p.ParentID,
		Slug:            p.Slug,
	}
}

// ProductSavedEvent is published after a product row has been written
type ProductSavedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductSavedEvent creates a new ProductSavedEvent
func NewProductSavedEvent(productID uuid.UUID) *ProductSavedEvent {
	return &ProductSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductSaved, AggregateTypeProduct, productID),
		ProductID:       productID,
	}
}

// ReviewAddedEvent is published when a customer review was added to a product
type ReviewAddedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewReviewAddedEvent creates a new ReviewAddedEvent
func NewReviewAddedEvent(productID uuid.UUID) *ReviewAddedEvent {
	return &ReviewAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewAdded, AggregateTypeProduct, productID),
		ProductID:       productID,
	}
}

// CategorySavedEvent is published when a category is created or updated
type CategorySavedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Slug       string    `json:"slug"`
}

// NewCategorySavedEvent creates a new CategorySavedEvent
func NewCategorySavedEvent(c *Category) *CategorySavedEvent {
	return &CategorySavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategorySaved, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
		Slug:            c.Slug,
	}
}

// CategoryDeletedEvent is published when a category is deleted
type CategoryDeletedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
}

// NewCategoryDeletedEvent creates a new CategoryDeletedEvent
func NewCategoryDeletedEvent(c *Category) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryDeleted, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
	}
}

// CategoryChangedEvent is published when the product assignment of a
// category changed
type CategoryChangedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
}

// NewCategoryChangedEvent creates a new CategoryChangedEvent
func NewCategoryChangedEvent(categoryID uuid.UUID) *CategoryChangedEvent {
	return &CategoryChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryChanged, AggregateTypeCategory, categoryID),
		CategoryID:      categoryID,
	}
}

// StaticBlockSavedEvent is published when a static block is saved
type StaticBlockSavedEvent struct {
	shared.BaseDomainEvent
	StaticBlockID uuid.UUID `json:"static_block_id"`
}

// NewStaticBlockSavedEvent creates a new StaticBlockSavedEvent
func NewStaticBlockSavedEvent(b *StaticBlock) *StaticBlockSavedEvent {
	return &StaticBlockSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStaticBlockSaved, AggregateTypeStaticBlock, b.ID),
		StaticBlockID:   b.ID,
	}
}
