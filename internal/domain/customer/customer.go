package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
)

// Customer stores the checkout selections of a shop visitor.
type Customer struct {
	shared.BaseEntity
	UserID                   *uuid.UUID `gorm:"type:uuid;index"`
	SessionID                string     `gorm:"type:varchar(100);not null;default:'';index"`
	SelectedShippingMethodID *uuid.UUID `gorm:"type:uuid"`
	SelectedPaymentMethodID  *uuid.UUID `gorm:"type:uuid"`
	SelectedCountry          string     `gorm:"type:varchar(2);not null;default:''"`
	ShippingAddressCountry   string     `gorm:"type:varchar(2);not null;default:''"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// New creates a customer for a session and an optional user
func New(sessionID string, userID *uuid.UUID) (*Customer, error) {
	if sessionID == "" && userID == nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Customer needs a session or a user")
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		SessionID:  sessionID,
	}, nil
}

// SelectShippingMethod stores an explicit shipping method choice; nil clears it.
func (c *Customer) SelectShippingMethod(id *uuid.UUID) {
	c.SelectedShippingMethodID = id
	c.Touch()
}

// SelectPaymentMethod stores an explicit payment method choice; nil clears it.
func (c *Customer) SelectPaymentMethod(id *uuid.UUID) {
	c.SelectedPaymentMethodID = id
	c.Touch()
}

// SelectCountry stores the country chosen in the cart
func (c *Customer) SelectCountry(code string) {
	c.SelectedCountry = strings.ToUpper(code)
	c.Touch()
}

// SetShippingAddressCountry stores the country of the shipping address
func (c *Customer) SetShippingAddressCountry(code string) {
	c.ShippingAddressCountry = strings.ToUpper(code)
	c.Touch()
}

// Country returns the shipping address country, then the selected country.
// The empty string means the shop default applies.
func (c *Customer) Country() string {
	if c == nil {
		return ""
	}
	if c.ShippingAddressCountry != "" {
		return c.ShippingAddressCountry
	}
	return c.SelectedCountry
}

// ShippingMethodID returns the selected shipping method or uuid.Nil
func (c *Customer) ShippingMethodID() uuid.UUID {
	if c == nil || c.SelectedShippingMethodID == nil {
		return uuid.Nil
	}
	return *c.SelectedShippingMethodID
}

// PaymentMethodID returns the selected payment method or uuid.Nil
func (c *Customer) PaymentMethodID() uuid.UUID {
	if c == nil || c.SelectedPaymentMethodID == nil {
		return uuid.Nil
	}
	return *c.SelectedPaymentMethodID
}

// Repository defines the interface for customer persistence
type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindBySession(ctx context.Context, sessionID string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
