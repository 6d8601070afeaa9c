package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Method is a way the customer pays. Processor names the registered
// processor that handles the payment; an empty name submits the order
// without further processing.
type Method struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:text"`
	Note        string          `gorm:"type:text"`
	Active      bool            `gorm:"not null;default:false;index"`
	Priority    int             `gorm:"not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxID       *uuid.UUID      `gorm:"type:uuid"`
	Tax         *pricing.Tax    `gorm:"foreignKey:TaxID"`
	Processor   string          `gorm:"type:varchar(100);not null;default:''"`
	Prices      []MethodPrice   `gorm:"foreignKey:MethodID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Method) TableName() string {
	return "payment_methods"
}

// CriteriaOwner implements criteria.Owner
func (m Method) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerPaymentMethod, m.ID
}

// NewMethod creates an inactive payment method
func NewMethod(name string, price decimal.Decimal, processor string) (*Method, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Payment method name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Method{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Processor:         processor,
		Prices:            make([]MethodPrice, 0),
	}, nil
}

// Activate makes the method selectable
func (m *Method) Activate(priority int) {
	m.Active = true
	m.Priority = priority
	m.changed()
}

// Deactivate hides the method from customers
func (m *Method) Deactivate() {
	m.Active = false
	m.changed()
}

// SetTax sets the included tax
func (m *Method) SetTax(tax *pricing.Tax) {
	m.Tax = tax
	if tax != nil {
		m.TaxID = &tax.ID
	} else {
		m.TaxID = nil
	}
	m.changed()
}

// AddPrice adds an additional price that applies when its criteria hold
func (m *Method) AddPrice(price decimal.Decimal, priority int) *MethodPrice {
	m.Prices = append(m.Prices, MethodPrice{
		ID:       uuid.New(),
		MethodID: m.ID,
		Price:    price,
		Priority: priority,
		Active:   true,
	})
	m.changed()
	return &m.Prices[len(m.Prices)-1]
}

// TaxRate returns the rate of the method tax or 0
func (m *Method) TaxRate() decimal.Decimal {
	if m.Tax == nil {
		return decimal.Zero
	}
	return m.Tax.Rate
}

func (m *Method) changed() {
	m.Touch()
	m.IncrementVersion()
}

// MethodPrice is an additional price of a payment method.
type MethodPrice struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MethodID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Priority int             `gorm:"not null;default:0"`
	Active   bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MethodPrice) TableName() string {
	return "payment_method_prices"
}

// CriteriaOwner implements criteria.Owner
func (p MethodPrice) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerPaymentMethodPrice, p.ID
}

// Costs is the price and included tax of a payment method.
type Costs struct {
	Price decimal.Decimal `json:"price"`
	Tax   decimal.Decimal `json:"tax"`
}

// CostsFor returns the first valid additional price, else the method price.
// Tax is always the method tax contained in the price.
func CostsFor(m *Method, price *MethodPrice) Costs {
	if m == nil {
		return Costs{Price: decimal.Zero, Tax: decimal.Zero}
	}
	p := m.Price
	if price != nil {
		p = price.Price
	}
	return Costs{Price: p, Tax: pricing.TaxIncluded(p, m.TaxRate())}
}

// Repository defines the interface for payment method persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Method, error)

	// FindActive returns active methods with prices and tax, ordered by priority
	FindActive(ctx context.Context) ([]Method, error)

	Save(ctx context.Context, m *Method) error
	Delete(ctx context.Context, id uuid.UUID) error
}
