package discount

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Type says how the discount value is interpreted
type Type int

const (
	TypeAbsolute   Type = 0
	TypePercentage Type = 1
)

var hundred = decimal.NewFromInt(100)

// Discount is granted when all its criteria hold. A discount restricted
// to products only applies to cart lines of those products.
type Discount struct {
	shared.BaseAggregateRoot
	Name       string          `gorm:"type:varchar(100);not null"`
	Active     bool            `gorm:"not null;default:false"`
	Value      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type       Type            `gorm:"not null;default:0"`
	TaxID      *uuid.UUID      `gorm:"type:uuid"`
	Tax        *pricing.Tax    `gorm:"foreignKey:TaxID"`
	SKU        string          `gorm:"type:varchar(50)"`
	SumsUp     bool            `gorm:"not null"`
	ProductIDs []uuid.UUID     `gorm:"serializer:json;type:text"`
}

// TableName returns the table name for GORM
func (Discount) TableName() string {
	return "discounts"
}

// CriteriaOwner implements criteria.Owner
func (d Discount) CriteriaOwner() (criteria.OwnerType, uuid.UUID) {
	return criteria.OwnerDiscount, d.ID
}

// New creates an active discount
func New(name string, value decimal.Decimal, typ Type) (*Discount, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Discount name cannot be empty")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Discount value cannot be negative")
	}
	if typ != TypeAbsolute && typ != TypePercentage {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown discount type")
	}
	return &Discount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Active:            true,
		Value:             value,
		Type:              typ,
		SumsUp:            true,
	}, nil
}

// RestrictTo limits the discount to the given products
func (d *Discount) RestrictTo(productIDs ...uuid.UUID) {
	d.ProductIDs = productIDs
	d.Touch()
	d.IncrementVersion()
}

// IsRestricted returns true if the discount applies to certain products only
func (d *Discount) IsRestricted() bool {
	return len(d.ProductIDs) > 0
}

func (d *Discount) appliesTo(productID uuid.UUID) bool {
	return slices.Contains(d.ProductIDs, productID)
}

func (d *Discount) percentOf(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(d.Value).Div(hundred)
}

// Line is a cart line with its gross line total.
type Line struct {
	ProductID  uuid.UUID
	PriceGross decimal.Decimal
}

// Basket is what a discount is computed against: a cart, or a single
// product when no cart exists.
type Basket struct {
	// Cart is false when only Product is known
	Cart       bool
	Lines      []Line
	PriceGross decimal.Decimal
	Tax        decimal.Decimal
	Product    *Line
}

// PriceGross returns the gross amount of the discount.
func (d *Discount) PriceGross(b Basket) decimal.Decimal {
	if d.IsRestricted() {
		if b.Cart {
			total := decimal.Zero
			for _, l := range b.Lines {
				if !d.appliesTo(l.ProductID) {
					continue
				}
				if d.Type == TypeAbsolute {
					total = total.Add(d.Value)
				} else {
					total = total.Add(d.percentOf(l.PriceGross))
				}
			}
			return total
		}
		if b.Product != nil && d.appliesTo(b.Product.ProductID) {
			if d.Type == TypeAbsolute {
				return d.Value
			}
			return d.percentOf(b.Product.PriceGross)
		}
		return decimal.Zero
	}

	if d.Type == TypeAbsolute {
		return d.Value
	}
	if b.Cart {
		return d.percentOf(b.PriceGross)
	}
	if b.Product != nil {
		return d.percentOf(b.Product.PriceGross)
	}
	return decimal.Zero
}

// TaxAmount returns the tax included in the discount. Without an own tax an
// absolute discount carries none and a percentage discount takes its share
// of the cart tax.
func (d *Discount) TaxAmount(b Basket) decimal.Decimal {
	if d.Tax != nil {
		return pricing.TaxIncluded(d.PriceGross(b), d.Tax.Rate)
	}
	if d.Type == TypeAbsolute || !b.Cart {
		return decimal.Zero
	}
	return d.percentOf(b.Tax)
}

// PriceNet returns gross minus tax
func (d *Discount) PriceNet(b Basket) decimal.Decimal {
	return d.PriceGross(b).Sub(d.TaxAmount(b))
}

// IsValid checks the product restriction and then the criteria.
func (d *Discount) IsValid(ctx context.Context, checker *criteria.Checker, b Basket, s *criteria.Subject) (bool, error) {
	if !d.Active {
		return false, nil
	}
	if d.IsRestricted() {
		if !b.Cart {
			return false, nil
		}
		if !slices.ContainsFunc(b.Lines, func(l Line) bool { return d.appliesTo(l.ProductID) }) {
			return false, nil
		}
	}
	return checker.IsValid(ctx, d, s)
}

// Combine drops discounts that must not be summed up. A discount that does
// not sum up is only granted alone and never together with a voucher.
func Combine(valid []Discount, voucherApplied bool) []Discount {
	result := make([]Discount, 0, len(valid))
	for _, d := range valid {
		if len(result) > 0 && !result[0].SumsUp {
			break
		}
		if !d.SumsUp && (voucherApplied || len(result) > 0) {
			continue
		}
		result = append(result, d)
	}
	return result
}

// Repository defines the interface for discount persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	// FindActive returns active discounts in creation order
	FindActive(ctx context.Context) ([]Discount, error)
	Save(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
}
