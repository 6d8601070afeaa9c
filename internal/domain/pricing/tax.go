package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Tax is a tax rate in percent assigned to products and methods.
type Tax struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Rate        decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"rate"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
}

// TableName returns the table name for GORM
func (Tax) TableName() string {
	return "taxes"
}

// NewTax creates a tax rate
func NewTax(rate decimal.Decimal) (*Tax, error) {
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate cannot be negative")
	}
	return &Tax{ID: uuid.New(), Rate: rate}, nil
}

// CustomerTax is a tax rate that replaces the product tax rate for
// customers matching its criteria, e.g. customers shipping abroad.
type CustomerTax struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Rate        decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"rate"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Position    int             `gorm:"not null" json:"position"`
}

// TableName returns the table name for GORM
func (CustomerTax) TableName() string {
	return "customer_taxes"
}

// CriteriaOwner identifies the criteria list of the customer tax
func (t CustomerTax) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerCustomerTax, t.ID
}

// NewCustomerTax creates a customer tax
func NewCustomerTax(rate decimal.Decimal) (*CustomerTax, error) {
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate cannot be negative")
	}
	return &CustomerTax{ID: uuid.New(), Rate: rate, Position: 999}, nil
}

// CustomerTaxRate returns the rate of the first valid customer tax and
// falls back to the given product rate.
func CustomerTaxRate(ctx context.Context, checker *criteria.Checker, taxes []CustomerTax, s *criteria.Subject, fallback decimal.Decimal) (decimal.Decimal, error) {
	tax, ok, err := criteria.FirstValid(ctx, checker, taxes, s)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return tax.Rate, nil
	}
	return fallback, nil
}

// TaxIncluded returns the tax contained in a gross amount: gross * rate / (100 + rate).
func TaxIncluded(gross, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return gross.Mul(rate).Div(hundred.Add(rate))
}

// factor turns a percentage rate into a multiplier, e.g. 19 -> 1.19.
func factor(rate decimal.Decimal) decimal.Decimal {
	return rate.Add(hundred).Div(hundred)
}

// TaxRepository defines the interface for taxes
type TaxRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tax, error)
	FindAll(ctx context.Context) ([]Tax, error)
	Save(ctx context.Context, tax *Tax) error
}

// CustomerTaxRepository defines the interface for customer taxes
type CustomerTaxRepository interface {
	// FindAll returns all customer taxes ordered by position
	FindAll(ctx context.Context) ([]CustomerTax, error)
	Save(ctx context.Context, tax *CustomerTax) error
}
