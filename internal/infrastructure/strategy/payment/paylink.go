package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/payment"
)

// PayLinkProcessor hands the customer over to a hosted payment page. The
// order is created first so the page can reference its number; the order
// stays submitted until the provider reports the payment.
//
// The template may contain {number} and {amount}.
type PayLinkProcessor struct {
	name     string
	template string
}

// NewPayLinkProcessor creates a processor for a hosted payment page
func NewPayLinkProcessor(name, template string) (*PayLinkProcessor, error) {
	if !strings.Contains(template, "{number}") {
		return nil, errors.New("pay link template needs a {number} placeholder")
	}
	if _, err := url.Parse(template); err != nil {
		return nil, err
	}
	return &PayLinkProcessor{name: name, template: template}, nil
}

// Name implements payment.Processor
func (p *PayLinkProcessor) Name() string { return p.name }

// CreateOrderTime implements payment.Processor
func (p *PayLinkProcessor) CreateOrderTime() payment.CreateOrderTime {
	return payment.OrderImmediately
}

// Process returns the pay link as next URL
func (p *PayLinkProcessor) Process(_ context.Context, req payment.Request) (payment.Result, error) {
	if req.Order == nil {
		return payment.Result{}, errors.New("pay link needs the created order")
	}
	return payment.Result{Accepted: true, NextURL: p.PayLink(req.Order)}, nil
}

// PayLink fills the template with the order number and price
func (p *PayLinkProcessor) PayLink(o *order.Order) string {
	return strings.NewReplacer(
		"{number}", url.QueryEscape(o.Number),
		"{amount}", o.Price.StringFixed(2),
	).Replace(p.template)
}

var _ payment.Processor = (*PayLinkProcessor)(nil)
