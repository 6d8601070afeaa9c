package shipping

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Method decides how bought products are delivered. Only active methods
// whose criteria hold are offered to the customer.
type Method struct {
	shared.BaseAggregateRoot
	Name            string                `gorm:"type:varchar(50);not null"`
	Description     string                `gorm:"type:text"`
	Note            string                `gorm:"type:text"`
	Active          bool                  `gorm:"not null;default:false;index"`
	Priority        int                   `gorm:"not null;default:0"`
	Price           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxID           *uuid.UUID            `gorm:"type:uuid"`
	Tax             *pricing.Tax          `gorm:"foreignKey:TaxID"`
	DeliveryTimeID  *uuid.UUID            `gorm:"type:uuid"`
	DeliveryTime    *catalog.DeliveryTime `gorm:"foreignKey:DeliveryTimeID"`
	PriceCalculator string                `gorm:"type:varchar(50);not null"`
	Prices          []MethodPrice         `gorm:"foreignKey:MethodID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Method) TableName() string {
	return "shipping_methods"
}

// CriteriaOwner implements criteria.Owner
func (m Method) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerShippingMethod, m.ID
}

// NewMethod creates an inactive shipping method
func NewMethod(name string, price decimal.Decimal) (*Method, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shipping method name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	m := &Method{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		PriceCalculator:   pricing.CalculatorGross,
		Prices:            make([]MethodPrice, 0),
	}
	m.AddDomainEvent(NewShippingMethodSavedEvent(m.ID))
	return m, nil
}

// Activate makes the method selectable
func (m *Method) Activate(priority int) {
	m.Active = true
	m.Priority = priority
	m.saved()
}

// Deactivate hides the method from customers
func (m *Method) Deactivate() {
	m.Active = false
	m.saved()
}

// SetTax sets the included tax
func (m *Method) SetTax(tax *pricing.Tax) {
	m.Tax = tax
	if tax != nil {
		m.TaxID = &tax.ID
	} else {
		m.TaxID = nil
	}
	m.saved()
}

// SetDeliveryTime sets the delivery time of the method
func (m *Method) SetDeliveryTime(dt *catalog.DeliveryTime) {
	m.DeliveryTime = dt
	if dt != nil {
		m.DeliveryTimeID = &dt.ID
	} else {
		m.DeliveryTimeID = nil
	}
	m.saved()
}

// AddPrice adds an additional price that applies when its criteria hold
func (m *Method) AddPrice(price decimal.Decimal, priority int) *MethodPrice {
	p := MethodPrice{
		ID:       uuid.New(),
		MethodID: m.ID,
		Price:    price,
		Priority: priority,
		Active:   true,
	}
	m.Prices = append(m.Prices, p)
	m.saved()
	return &m.Prices[len(m.Prices)-1]
}

// TaxRate returns the rate of the method tax or 0
func (m *Method) TaxRate() decimal.Decimal {
	if m.Tax == nil {
		return decimal.Zero
	}
	return m.Tax.Rate
}

func (m *Method) saved() {
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewShippingMethodSavedEvent(m.ID))
}

// MethodPrice is an additional price of a shipping method. Prices are
// tried by priority and the first one with valid criteria wins.
type MethodPrice struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MethodID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Priority int             `gorm:"not null;default:0"`
	Active   bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MethodPrice) TableName() string {
	return "shipping_method_prices"
}

// CriteriaOwner implements criteria.Owner
func (p MethodPrice) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerShippingMethodPrice, p.ID
}

// Repository defines the interface for shipping method persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Method, error)

	// FindActive returns active methods with prices, tax and delivery time,
	// ordered by priority
	FindActive(ctx context.Context) ([]Method, error)

	Save(ctx context.Context, m *Method) error
	Delete(ctx context.Context, id uuid.UUID) error
}
