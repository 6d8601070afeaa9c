package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lfs/storefront/internal/domain/shared"
)

// MaxCategoryDepth is the maximum depth of category hierarchy
const MaxCategoryDepth = 8

// Category is a node of the catalog tree. Products are assigned to
// categories; a category may show the products of all its descendants.
type Category struct {
	shared.BaseAggregateRoot
	Name             string     `gorm:"type:varchar(100);not null"`
	Slug             string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	ParentID         *uuid.UUID `gorm:"type:uuid;index"`
	Path             string     `gorm:"type:varchar(1000);not null;index"` // Materialized path for tree queries
	Level            int        `gorm:"not null;default:0"`
	Position         int        `gorm:"not null"`
	ShowAllProducts  bool       `gorm:"not null;default:false"`
	StaticBlockID    *uuid.UUID `gorm:"type:uuid;index"`
	ShortDescription string     `gorm:"type:text"`
	Description      string     `gorm:"type:text"`
	MetaTitle        string     `gorm:"type:varchar(100);not null"`
	MetaKeywords     string     `gorm:"type:text"`
	MetaDescription  string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(name, slug string) (*Category, error) {
	if err := validateCategory(name, slug); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              strings.ToLower(slug),
		Position:          1000,
		MetaTitle:         "<name>",
	}
	// Root category path is just the ID
	category.Path = category.ID.String()

	category.AddDomainEvent(NewCategorySavedEvent(category))

	return category, nil
}

// NewChildCategory creates a new child category under a parent
func NewChildCategory(name, slug string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}

	category, err := NewCategory(name, slug)
	if err != nil {
		return nil, err
	}
	category.ParentID = &parent.ID
	category.Level = parent.Level + 1
	// Child category path is parent path + separator + child ID
	category.Path = parent.Path + "/" + category.ID.String()

	return category, nil
}

// Update updates the category's texts
func (c *Category) Update(name, shortDescription, description string) error {
	if err := validateCategory(name, c.Slug); err != nil {
		return err
	}

	c.Name = name
	c.ShortDescription = shortDescription
	c.Description = description
	c.touch()

	return nil
}

// SetPosition sets the display order of the category
func (c *Category) SetPosition(position int) {
	c.Position = position
	c.touch()
}

// SetShowAllProducts toggles whether products of descendants are listed too.
func (c *Category) SetShowAllProducts(all bool) {
	c.ShowAllProducts = all
	c.touch()
}

// SetStaticBlock assigns a static block, nil removes it.
func (c *Category) SetStaticBlock(blockID *uuid.UUID) {
	c.StaticBlockID = blockID
	c.touch()
}

// MarkDeleted records the deletion event of the category.
func (c *Category) MarkDeleted() {
	c.AddDomainEvent(NewCategoryDeletedEvent(c))
}

func (c *Category) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategorySavedEvent(c))
}

// GetMetaTitle returns the meta title with <name> substituted
func (c *Category) GetMetaTitle() string {
	return strings.ReplaceAll(c.MetaTitle, "<name>", c.Name)
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// GetAncestorIDs returns the IDs of all ancestor categories, root first
func (c *Category) GetAncestorIDs() []uuid.UUID {
	if c.Path == "" {
		return nil
	}

	parts := strings.Split(c.Path, "/")
	if len(parts) <= 1 {
		return nil
	}

	// Exclude the last element which is this category's ID
	ancestors := make([]uuid.UUID, 0, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		if id, err := uuid.Parse(parts[i]); err == nil {
			ancestors = append(ancestors, id)
		}
	}

	return ancestors
}

// IsAncestorOf returns true if this category is an ancestor of the given category
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

func validateCategory(name, slug string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return validateSlug(slug)
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 100 characters")
	}
	for _, r := range slug {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SLUG", "Slug can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
