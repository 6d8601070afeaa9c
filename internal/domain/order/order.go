package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// State is the processing state of an order
type State int

const (
	StateSubmitted      State = 0
	StatePaid           State = 1
	StateSent           State = 2
	StateClosed         State = 3
	StateCanceled       State = 4
	StatePaymentFailed  State = 5
	StatePaymentFlagged State = 6
	StatePrepared       State = 7
)

var stateNames = map[State]string{
	StateSubmitted:      "SUBMITTED",
	StatePaid:           "PAID",
	StateSent:           "SENT",
	StateClosed:         "CLOSED",
	StateCanceled:       "CANCELED",
	StatePaymentFailed:  "PAYMENT_FAILED",
	StatePaymentFlagged: "PAYMENT_FLAGGED",
	StatePrepared:       "PREPARED",
}

// IsValid checks if the state is a known order state
func (s State) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// String returns the string representation of State
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal returns true for closed and canceled orders
func (s State) IsTerminal() bool {
	return s == StateClosed || s == StateCanceled
}

// Item is a snapshot of a bought product. ProductID is nil once the product
// has been deleted.
type Item struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         *uuid.UUID      `gorm:"type:uuid;index"`
	ProductAmount     float64         `gorm:"not null"`
	ProductSKU        string          `gorm:"type:varchar(100)"`
	ProductName       string          `gorm:"type:varchar(200)"`
	ProductPriceNet   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProductPriceGross decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProductTax        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt         time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// PriceGross returns unit gross price times amount
func (i Item) PriceGross() decimal.Decimal {
	return i.ProductPriceGross.Mul(decimal.NewFromFloat(i.ProductAmount))
}

// Costs is a price/tax pair of shipping, payment or voucher.
type Costs struct {
	Price decimal.Decimal
	Tax   decimal.Decimal
}

// Order is a submitted cart.
type Order struct {
	shared.BaseAggregateRoot
	Number           string          `gorm:"type:varchar(30);uniqueIndex"`
	UserID           *uuid.UUID      `gorm:"type:uuid;index"`
	SessionID        string          `gorm:"type:varchar(100)"`
	State            State           `gorm:"not null;default:0;index"`
	StateModified    time.Time       `gorm:"not null"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tax              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingMethodID *uuid.UUID      `gorm:"type:uuid"`
	ShippingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingTax      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentMethodID  *uuid.UUID      `gorm:"type:uuid"`
	PaymentPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentTax       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VoucherNumber    string          `gorm:"type:varchar(100)"`
	VoucherPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VoucherTax       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Country          string          `gorm:"type:varchar(2)"`
	Message          string          `gorm:"type:text"`
	PayLink          string          `gorm:"type:text"`
	Items            []Item          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// New creates a submitted order without items
func New(number string, userID *uuid.UUID, sessionID string) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	now := time.Now()
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		UserID:            userID,
		SessionID:         sessionID,
		State:             StateSubmitted,
		StateModified:     now,
		Price:             decimal.Zero,
		Tax:               decimal.Zero,
		ShippingPrice:     decimal.Zero,
		ShippingTax:       decimal.Zero,
		PaymentPrice:      decimal.Zero,
		PaymentTax:        decimal.Zero,
		VoucherPrice:      decimal.Zero,
		VoucherTax:        decimal.Zero,
		Items:             make([]Item, 0),
	}, nil
}

// AddItem snapshots a product line
func (o *Order) AddItem(productID uuid.UUID, sku, name string, amount float64, priceNet, priceGross, tax decimal.Decimal) (*Item, error) {
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	item := Item{
		ID:                uuid.New(),
		OrderID:           o.ID,
		ProductID:         &productID,
		ProductAmount:     amount,
		ProductSKU:        sku,
		ProductName:       name,
		ProductPriceNet:   priceNet,
		ProductPriceGross: priceGross,
		ProductTax:        tax,
		CreatedAt:         time.Now(),
	}
	o.Items = append(o.Items, item)
	o.AddDomainEvent(NewOrderItemSavedEvent(o.ID, item))
	return &o.Items[len(o.Items)-1], nil
}

// AddDiscount records a granted discount as a negative line without product
func (o *Order) AddDiscount(sku, name string, priceNet, priceGross, tax decimal.Decimal) *Item {
	item := Item{
		ID:                uuid.New(),
		OrderID:           o.ID,
		ProductAmount:     1,
		ProductSKU:        sku,
		ProductName:       name,
		ProductPriceNet:   priceNet.Neg(),
		ProductPriceGross: priceGross.Neg(),
		ProductTax:        tax.Neg(),
		CreatedAt:         time.Now(),
	}
	o.Items = append(o.Items, item)
	return &o.Items[len(o.Items)-1]
}

// RemoveItem removes a line
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	for i, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.AddDomainEvent(NewOrderItemDeletedEvent(o.ID, item))
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetShipping stores the shipping method and its costs
func (o *Order) SetShipping(methodID *uuid.UUID, c Costs) {
	o.ShippingMethodID = methodID
	o.ShippingPrice = c.Price
	o.ShippingTax = c.Tax
}

// SetPayment stores the payment method and its costs
func (o *Order) SetPayment(methodID *uuid.UUID, c Costs) {
	o.PaymentMethodID = methodID
	o.PaymentPrice = c.Price
	o.PaymentTax = c.Tax
}

// SetVoucher stores the redeemed voucher
func (o *Order) SetVoucher(number string, c Costs) {
	o.VoucherNumber = number
	o.VoucherPrice = c.Price
	o.VoucherTax = c.Tax
}

// SetTotals stores the final price and tax
func (o *Order) SetTotals(price, tax decimal.Decimal) {
	o.Price = price
	o.Tax = tax
}

// SetState moves the order to a new state
func (o *Order) SetState(state State) error {
	if !state.IsValid() {
		return shared.NewDomainError("INVALID_STATE", "Unknown order state")
	}
	if o.State.IsTerminal() && state != o.State {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a "+o.State.String()+" order")
	}
	if state == o.State {
		return nil
	}
	o.State = state
	o.StateModified = time.Now()
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStateChangedEvent(o))
	return nil
}

// Submitted records the submission of a new order
func (o *Order) Submitted() {
	o.AddDomainEvent(NewOrderSubmittedEvent(o))
}

// Repository defines the interface for order persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// FindClosedBefore returns closed orders whose state changed before t
	FindClosedBefore(ctx context.Context, t time.Time) ([]Order, error)

	// AllItems returns every order item that still references a product
	AllItems(ctx context.Context) ([]Item, error)

	// NextNumber returns a new unique order number
	NextNumber(ctx context.Context) (string, error)

	Save(ctx context.Context, order *Order) error
}
