package page

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// AggregateTypePage is the aggregate type of pages
const AggregateTypePage = "Page"

// EventTypePageSaved is raised whenever a page is created or edited
const EventTypePageSaved = "PageSaved"

// Page is a static content page. Only its cache footprint matters here.
type Page struct {
	shared.BaseAggregateRoot
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Title    string `gorm:"type:varchar(100);not null"`
	Active   bool   `gorm:"not null;default:false"`
	Position int    `gorm:"not null"`
	Body     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Page) TableName() string {
	return "pages"
}

// New creates an inactive page
func New(title, slug string) (*Page, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Page title cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Page slug cannot be empty")
	}
	p := &Page{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              strings.ToLower(slug),
		Title:             title,
		Position:          999,
	}
	p.AddDomainEvent(NewPageSavedEvent(p))
	return p, nil
}

// Update changes title, body and active state
func (p *Page) Update(title, body string, active bool) {
	p.Title = title
	p.Body = body
	p.Active = active
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPageSavedEvent(p))
}

// PageSavedEvent carries the slug the page is cached under
type PageSavedEvent struct {
	shared.BaseDomainEvent
	PageID uuid.UUID `json:"page_id"`
	Slug   string    `json:"slug"`
}

// NewPageSavedEvent creates a new PageSavedEvent
func NewPageSavedEvent(p *Page) *PageSavedEvent {
	return &PageSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePageSaved, AggregateTypePage, p.ID),
		PageID:          p.ID,
		Slug:            p.Slug,
	}
}

// Repository defines the interface for page persistence
type Repository interface {
	FindBySlug(ctx context.Context, slug string) (*Page, error)
	Save(ctx context.Context, page *Page) error
}
