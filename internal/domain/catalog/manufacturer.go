package catalog

import (
	"github.com/google/uuid"

	"github.com/lfs/storefront/internal/domain/shared"
)

// Manufacturer produces products and is offered as a filter.
type Manufacturer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(50);not null" json:"name"`
	Slug     string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"slug"`
	Position int       `gorm:"not null" json:"position"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a manufacturer
func NewManufacturer(name, slug string) (*Manufacturer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot be empty")
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	return &Manufacturer{ID: uuid.New(), Name: name, Slug: slug, Position: 1000}, nil
}

// StaticBlock is a piece of HTML shown on categories and products.
type StaticBlock struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(30);not null"`
	HTML string `gorm:"column:html;type:text"`
}

// TableName returns the table name for GORM
func (StaticBlock) TableName() string {
	return "static_blocks"
}

// NewStaticBlock creates a static block
func NewStaticBlock(name, html string) (*StaticBlock, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Static block name cannot be empty")
	}
	b := &StaticBlock{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: name, HTML: html}
	b.AddDomainEvent(NewStaticBlockSavedEvent(b))
	return b, nil
}

// Update replaces the block content
func (b *StaticBlock) Update(name, html string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Static block name cannot be empty")
	}
	b.Name = name
	b.HTML = html
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewStaticBlockSavedEvent(b))
	return nil
}
