package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderTime decides when checkout creates the order.
type CreateOrderTime int

const (
	// OrderImmediately creates the order before the payment is processed
	OrderImmediately CreateOrderTime = 0
	// OrderAccepted creates the order only after the payment was accepted
	OrderAccepted CreateOrderTime = 1
)

// Request is what a processor sees of the checkout. Order is set for
// OrderImmediately processors, otherwise only the cart totals are known.
type Request struct {
	CartID     uuid.UUID
	PriceGross decimal.Decimal
	Order      *order.Order
}

// Result is the outcome of processing a payment.
type Result struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
	NextURL  string `json:"next_url,omitempty"`
	// OrderState overrides the state of the created order when set
	OrderState *order.State `json:"order_state,omitempty"`
}

// Processor handles the payment of a payment method.
type Processor interface {
	// Name is the key payment methods reference the processor by
	Name() string
	CreateOrderTime() CreateOrderTime
	Process(ctx context.Context, req Request) (Result, error)
	// PayLink returns a link the customer can pay the order with, if any
	PayLink(o *order.Order) string
}

// ProcessorRegistry looks processors up by name.
type ProcessorRegistry interface {
	GetProcessor(name string) (Processor, error)
}
