package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// SummaryLine is a cart line as the customer sees it.
type SummaryLine struct {
	ItemID     uuid.UUID       `json:"item_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Amount     float64         `json:"amount"`
	PriceGross decimal.Decimal `json:"price_gross"`
	PriceNet   decimal.Decimal `json:"price_net"`
	TotalGross decimal.Decimal `json:"total_gross"`
	Tax        decimal.Decimal `json:"tax"`
}

// MethodCosts is a selected shipping or payment method with its costs.
type MethodCosts struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Tax   decimal.Decimal `json:"tax"`
}

// Summary is the priced cart including shipping, payment, discounts and
// voucher.
type Summary struct {
	Country      string                `json:"country"`
	Lines        []SummaryLine         `json:"lines"`
	Totals       cart.Totals           `json:"totals"`
	Shipping     *MethodCosts          `json:"shipping,omitempty"`
	Payment      *MethodCosts          `json:"payment,omitempty"`
	Discounts    []AppliedDiscount     `json:"discounts"`
	Voucher      *AppliedVoucher       `json:"voucher,omitempty"`
	PriceGross   decimal.Decimal       `json:"price_gross"`
	Tax          decimal.Decimal       `json:"tax"`
	DeliveryTime *catalog.DeliveryTime `json:"delivery_time,omitempty"`
}

// SummaryService combines the checkout rules into the cart summary.
type SummaryService struct {
	shipping  *ShippingService
	payment   *PaymentService
	discounts *DiscountService
	vouchers  *VoucherService
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(shipping *ShippingService, payment *PaymentService, discounts *DiscountService, vouchers *VoucherService) *SummaryService {
	return &SummaryService{shipping: shipping, payment: payment, discounts: discounts, vouchers: vouchers}
}

// Summary prices the session cart. Invalid method selections are replaced
// by the default methods first.
func (s *SummaryService) Summary(ctx context.Context, sess *Session, voucherNumber string) (*Summary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "summary")
	defer span.End()

	sum, err := s.summary(ctx, sess, voucherNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "cart.price_gross", sum.PriceGross.String())
	return sum, nil
}

func (s *SummaryService) summary(ctx context.Context, sess *Session, voucherNumber string) (*Summary, error) {
	if _, err := s.shipping.UpdateToValid(ctx, sess); err != nil {
		return nil, err
	}
	if _, err := s.payment.UpdateToValid(ctx, sess); err != nil {
		return nil, err
	}

	sum := &Summary{
		Country: sess.Subject.Country,
		Lines:   make([]SummaryLine, 0, len(sess.Lines)),
		Totals:  sess.Totals,
	}
	for _, l := range sess.Lines {
		sum.Lines = append(sum.Lines, SummaryLine{
			ItemID:     l.Item.ID,
			ProductID:  l.Product.ID,
			Slug:       l.Product.Slug,
			Name:       l.Product.Name,
			SKU:        l.Product.SKU,
			Amount:     l.Item.Amount,
			PriceGross: l.PriceGross,
			PriceNet:   l.PriceNet,
			TotalGross: l.TotalGross(),
			Tax:        l.TotalGross().Sub(l.TotalNet()),
		})
	}
	price := sess.Totals.PriceGross
	tax := sess.Totals.Tax

	shippingMethod, shippingCosts, err := s.shipping.SelectedCosts(ctx, sess)
	if err != nil {
		return nil, err
	}
	if shippingMethod != nil {
		sum.Shipping = &MethodCosts{ID: shippingMethod.ID, Name: shippingMethod.Name, Price: shippingCosts.Price, Tax: shippingCosts.Tax}
	}
	paymentMethod, paymentCosts, err := s.payment.SelectedCosts(ctx, sess)
	if err != nil {
		return nil, err
	}
	if paymentMethod != nil {
		sum.Payment = &MethodCosts{ID: paymentMethod.ID, Name: paymentMethod.Name, Price: paymentCosts.Price, Tax: paymentCosts.Tax}
	}
	price = price.Add(shippingCosts.Price).Add(paymentCosts.Price)
	tax = tax.Add(shippingCosts.Tax).Add(paymentCosts.Tax)

	applied, err := s.vouchers.Apply(ctx, sess, voucherNumber)
	if err != nil {
		return nil, err
	}
	if voucherNumber != "" {
		sum.Voucher = applied
	}
	sum.Discounts, err = s.discounts.Apply(ctx, sess, applied.Applied())
	if err != nil {
		return nil, err
	}
	for _, d := range sum.Discounts {
		price = price.Sub(d.PriceGross)
		tax = tax.Sub(d.Tax)
	}
	if applied.Applied() {
		price = price.Sub(applied.PriceGross)
		tax = tax.Sub(applied.Tax)
	}
	sum.PriceGross = price
	sum.Tax = tax

	if dt, ok, err := s.shipping.CartDeliveryTime(ctx, sess); err != nil {
		return nil, err
	} else if ok {
		sum.DeliveryTime = &dt
	}
	return sum, nil
}
