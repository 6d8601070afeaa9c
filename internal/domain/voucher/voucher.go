package voucher

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind says how the voucher value is interpreted
type Kind int

const (
	KindAbsolute   Kind = 0
	KindPercentage Kind = 1
)

var hundred = decimal.NewFromInt(100)

// Group groups vouchers created together
type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Group) TableName() string {
	return "voucher_groups"
}

// NewGroup creates a voucher group
func NewGroup(name string) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Voucher group name cannot be empty")
	}
	return &Group{ID: uuid.New(), Name: name, Position: 10, CreatedAt: time.Now()}, nil
}

// Voucher is a one time credit the customer redeems by its number.
type Voucher struct {
	shared.BaseAggregateRoot
	Number    string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	GroupID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate *time.Time      `gorm:"type:date"`
	EndDate   *time.Time      `gorm:"type:date"`
	KindOf    Kind            `gorm:"not null;default:0"`
	Value     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxID     *uuid.UUID      `gorm:"type:uuid"`
	Tax       *pricing.Tax    `gorm:"foreignKey:TaxID"`
	Active    bool            `gorm:"not null"`
	Used      bool            `gorm:"not null;default:false"`
	UsedAt    *time.Time
}

// TableName returns the table name for GORM
func (Voucher) TableName() string {
	return "vouchers"
}

// New creates an active, unused voucher
func New(number string, groupID uuid.UUID, kind Kind, value decimal.Decimal) (*Voucher, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Voucher number cannot be empty")
	}
	if kind != KindAbsolute && kind != KindPercentage {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown voucher kind")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Voucher value cannot be negative")
	}
	return &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		GroupID:           groupID,
		KindOf:            kind,
		Value:             value,
		Active:            true,
	}, nil
}

// SetPeriod limits the dates the voucher can be redeemed on; nil is open.
func (v *Voucher) SetPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must not be before start date")
	}
	v.StartDate = start
	v.EndDate = end
	return nil
}

// IsAbsolute returns true for absolute vouchers
func (v *Voucher) IsAbsolute() bool { return v.KindOf == KindAbsolute }

// IsPercentage returns true for percentage vouchers
func (v *Voucher) IsPercentage() bool { return v.KindOf == KindPercentage }

// IsEffective reports whether the voucher can be redeemed at now. Dates are
// compared by day.
func (v *Voucher) IsEffective(now time.Time) bool {
	if !v.Active || v.Used {
		return false
	}
	today := day(now)
	if v.StartDate != nil && today.Before(day(*v.StartDate)) {
		return false
	}
	if v.EndDate != nil && today.After(day(*v.EndDate)) {
		return false
	}
	return true
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CartAmounts are the cart totals a percentage voucher refers to.
type CartAmounts struct {
	PriceGross decimal.Decimal
	PriceNet   decimal.Decimal
	Tax        decimal.Decimal
}

// PriceGross returns the gross credit of the voucher
func (v *Voucher) PriceGross(cart CartAmounts) decimal.Decimal {
	if v.IsAbsolute() {
		return v.Value
	}
	return cart.PriceGross.Mul(v.Value).Div(hundred)
}

// TaxAmount returns the tax of the voucher. Absolute vouchers use their own
// tax; percentage vouchers take their share of the cart tax.
func (v *Voucher) TaxAmount(cart CartAmounts) decimal.Decimal {
	if v.IsAbsolute() {
		if v.Tax == nil {
			return decimal.Zero
		}
		return pricing.TaxIncluded(v.Value, v.Tax.Rate)
	}
	return cart.Tax.Mul(v.Value).Div(hundred)
}

// PriceNet returns the net credit of the voucher
func (v *Voucher) PriceNet(cart CartAmounts) decimal.Decimal {
	if v.IsAbsolute() {
		return v.Value.Sub(v.TaxAmount(cart))
	}
	return cart.PriceNet.Mul(v.Value).Div(hundred)
}

// MarkAsUsed redeems the voucher
func (v *Voucher) MarkAsUsed(now time.Time) error {
	if v.Used {
		return shared.ErrVoucherNotUsable
	}
	v.Used = true
	v.UsedAt = &now
	v.Touch()
	v.IncrementVersion()
	return nil
}

// Repository defines the interface for voucher persistence
type Repository interface {
	FindByNumber(ctx context.Context, number string) (*Voucher, error)
	// NumberExists reports whether a voucher number is taken
	NumberExists(ctx context.Context, number string) (bool, error)
	Save(ctx context.Context, v *Voucher) error
	SaveGroup(ctx context.Context, g *Group) error
	Options(ctx context.Context) (*Options, error)
}
