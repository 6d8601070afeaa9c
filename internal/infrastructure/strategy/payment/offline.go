// Package payment provides the payment processors shipped with the shop.
package payment

import (
	"context"

	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/payment"
)

// Processor names registered by default
const (
	ProcessorPrepayment     = "prepayment"
	ProcessorInvoice        = "invoice"
	ProcessorCashOnDelivery = "cash_on_delivery"
)

// OfflineProcessor accepts every payment. The money is collected outside
// the shop, so the order is created right away and keeps its state.
type OfflineProcessor struct {
	name    string
	message string
}

// NewOfflineProcessor creates an offline processor. message is shown to the
// customer after checkout.
func NewOfflineProcessor(name, message string) *OfflineProcessor {
	return &OfflineProcessor{name: name, message: message}
}

// Name implements payment.Processor
func (p *OfflineProcessor) Name() string { return p.name }

// CreateOrderTime implements payment.Processor
func (p *OfflineProcessor) CreateOrderTime() payment.CreateOrderTime {
	return payment.OrderImmediately
}

// Process implements payment.Processor
func (p *OfflineProcessor) Process(_ context.Context, _ payment.Request) (payment.Result, error) {
	return payment.Result{Accepted: true, Message: p.message}, nil
}

// PayLink implements payment.Processor; offline payments have none
func (p *OfflineProcessor) PayLink(_ *order.Order) string { return "" }

var _ payment.Processor = (*OfflineProcessor)(nil)
