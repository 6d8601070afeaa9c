package shop

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/shared"
)

// Shop holds the shop wide settings the rules fall back to.
type Shop struct {
	shared.BaseAggregateRoot
	Name            string                `gorm:"type:varchar(30);not null"`
	DefaultCountry  string                `gorm:"type:varchar(2);not null"`
	Countries       []string              `gorm:"serializer:json;type:text"`
	DeliveryTimeID  *uuid.UUID            `gorm:"type:uuid"`
	DeliveryTime    *catalog.DeliveryTime `gorm:"foreignKey:DeliveryTimeID"`
	PriceCalculator string                `gorm:"type:varchar(50);not null"`
	StaticBlockID   *uuid.UUID            `gorm:"type:uuid"`
	MetaTitle       string                `gorm:"type:varchar(80);not null"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// New creates a shop with its default country
func New(name, defaultCountry, priceCalculator string) (*Shop, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shop name cannot be empty")
	}
	if len(defaultCountry) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Default country must be a two letter code")
	}
	country := strings.ToUpper(defaultCountry)
	s := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DefaultCountry:    country,
		Countries:         []string{country},
		PriceCalculator:   priceCalculator,
		MetaTitle:         "<name>",
	}
	s.AddDomainEvent(NewShopSavedEvent(s.ID))
	return s, nil
}

// SetCountries replaces the shipping countries. The default country is
// always part of the list.
func (s *Shop) SetCountries(codes []string) {
	list := make([]string, 0, len(codes)+1)
	for _, c := range codes {
		c = strings.ToUpper(c)
		if !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	if !slices.Contains(list, s.DefaultCountry) {
		list = append(list, s.DefaultCountry)
	}
	s.Countries = list
	s.changed()
}

// SetDeliveryTime sets the shop wide fallback delivery time
func (s *Shop) SetDeliveryTime(dt *catalog.DeliveryTime) {
	s.DeliveryTime = dt
	if dt != nil {
		s.DeliveryTimeID = &dt.ID
	} else {
		s.DeliveryTimeID = nil
	}
	s.changed()
}

// SetPriceCalculator switches between gross and net pricing. Every cached
// price depends on it, so this raises a ShopChanged event.
func (s *Shop) SetPriceCalculator(name string) {
	s.PriceCalculator = name
	s.IncrementVersion()
	s.AddDomainEvent(NewShopChangedEvent(s.ID))
}

// ShipsTo returns true if the country is one of the shop countries
func (s *Shop) ShipsTo(code string) bool {
	return slices.Contains(s.Countries, strings.ToUpper(code))
}

// FallbackDeliveryTime returns the shop delivery time or 1-2 days
func (s *Shop) FallbackDeliveryTime() catalog.DeliveryTime {
	if s != nil && s.DeliveryTime != nil {
		return *s.DeliveryTime
	}
	return catalog.DefaultDeliveryTime()
}

// GetMetaTitle returns the meta title with <name> substituted
func (s *Shop) GetMetaTitle() string {
	return strings.ReplaceAll(s.MetaTitle, "<name>", s.Name)
}

func (s *Shop) changed() {
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewShopSavedEvent(s.ID))
}

// Repository defines the interface for shop persistence
type Repository interface {
	// Default returns the one shop of the installation
	Default(ctx context.Context) (*Shop, error)
	Save(ctx context.Context, shop *Shop) error
}
