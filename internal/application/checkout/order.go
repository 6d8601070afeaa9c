package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when an order is placed without cart items
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cart is empty")

// PlaceOrderInput are the values the customer enters on checkout
type PlaceOrderInput struct {
	VoucherNumber string
	Message       string
}

// PlaceOrderResult is the outcome of a checkout. Order is nil when the
// payment was declined before an order was created.
type PlaceOrderResult struct {
	Order   *order.Order   `json:"order,omitempty"`
	Payment payment.Result `json:"payment"`
}

// OrderService turns carts into orders.
type OrderService struct {
	orders     order.Repository
	products   catalog.ProductRepository
	summary    *SummaryService
	payment    *PaymentService
	vouchers   *VoucherService
	carts      *CartService
	processors payment.ProcessorRegistry
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders order.Repository,
	products catalog.ProductRepository,
	summary *SummaryService,
	paymentService *PaymentService,
	vouchers *VoucherService,
	carts *CartService,
	processors payment.ProcessorRegistry,
	events shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     orders,
		products:   products,
		summary:    summary,
		payment:    paymentService,
		vouchers:   vouchers,
		carts:      carts,
		processors: processors,
		events:     events,
		logger:     logger,
	}
}

// PlaceOrder processes the payment of the session cart and creates the
// order. Processors that create the order immediately see it during
// processing; all others only get the cart totals and the order is created
// once the payment is accepted. Without a processor the order is created
// and the payment counts as accepted.
func (s *OrderService) PlaceOrder(ctx context.Context, sess *Session, in PlaceOrderInput) (*PlaceOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order")
	defer span.End()

	result, err := s.placeOrder(ctx, sess, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "payment.accepted", result.Payment.Accepted)
	if result.Order != nil {
		telemetry.SetAttributes(span,
			telemetry.SpanAttrOrderID, result.Order.ID.String(),
			telemetry.SpanAttrOrderNumber, result.Order.Number,
		)
	}
	return result, nil
}

func (s *OrderService) placeOrder(ctx context.Context, sess *Session, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if !sess.HasItems() {
		return nil, ErrEmptyCart
	}
	sum, err := s.summary.Summary(ctx, sess, in.VoucherNumber)
	if err != nil {
		return nil, err
	}
	method, err := s.payment.SelectedMethod(ctx, sess)
	if err != nil {
		return nil, err
	}

	var processor payment.Processor
	if method != nil && method.Processor != "" {
		processor, err = s.processors.GetProcessor(method.Processor)
		if err != nil {
			return nil, fmt.Errorf("failed to get payment processor %q: %w", method.Processor, err)
		}
	}

	if processor == nil {
		o, err := s.createOrder(ctx, sess, sum, in, nil)
		if err != nil {
			return nil, err
		}
		return &PlaceOrderResult{Order: o, Payment: payment.Result{Accepted: true}}, nil
	}

	req := payment.Request{CartID: sess.Cart.ID, PriceGross: sum.PriceGross}
	if processor.CreateOrderTime() == payment.OrderImmediately {
		o, err := s.createOrder(ctx, sess, sum, in, processor)
		if err != nil {
			return nil, err
		}
		req.Order = o
		res, err := processor.Process(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("payment processing failed: %w", err)
		}
		if err := s.applyPaymentState(ctx, o, res); err != nil {
			return nil, err
		}
		return &PlaceOrderResult{Order: o, Payment: res}, nil
	}

	res, err := processor.Process(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}
	if !res.Accepted {
		s.logger.Info("Payment declined",
			zap.String("cart_id", sess.Cart.ID.String()),
			zap.String("processor", processor.Name()),
			zap.String("message", res.Message))
		return &PlaceOrderResult{Payment: res}, nil
	}
	o, err := s.createOrder(ctx, sess, sum, in, processor)
	if err != nil {
		return nil, err
	}
	if err := s.applyPaymentState(ctx, o, res); err != nil {
		return nil, err
	}
	return &PlaceOrderResult{Order: o, Payment: res}, nil
}

func (s *OrderService) applyPaymentState(ctx context.Context, o *order.Order, res payment.Result) error {
	if res.OrderState == nil {
		return nil
	}
	if err := o.SetState(*res.OrderState); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return shared.PublishPending(ctx, s.events, o)
}

// createOrder snapshots the cart into an order, decreases stock, redeems
// the voucher and deletes the cart.
func (s *OrderService) createOrder(ctx context.Context, sess *Session, sum *Summary, in PlaceOrderInput, processor payment.Processor) (*order.Order, error) {
	number, err := s.orders.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get order number: %w", err)
	}
	o, err := order.New(number, sess.Identity.UserID, sess.Identity.SessionID)
	if err != nil {
		return nil, err
	}
	o.Country = sum.Country
	o.Message = in.Message

	for _, l := range sess.Lines {
		if _, err := o.AddItem(l.Product.ID, l.Product.SKU, l.Product.Name, l.Item.Amount, l.PriceNet, l.PriceGross, l.PriceGross.Sub(l.PriceNet)); err != nil {
			return nil, err
		}
		if err := s.decreaseStock(ctx, l); err != nil {
			return nil, err
		}
	}
	for _, d := range sum.Discounts {
		o.AddDiscount(d.SKU, d.Name, d.PriceNet, d.PriceGross, d.Tax)
	}

	if sum.Shipping != nil {
		id := sum.Shipping.ID
		o.SetShipping(&id, order.Costs{Price: sum.Shipping.Price, Tax: sum.Shipping.Tax})
	}
	if sum.Payment != nil {
		id := sum.Payment.ID
		o.SetPayment(&id, order.Costs{Price: sum.Payment.Price, Tax: sum.Payment.Tax})
	}
	if sum.Voucher.Applied() {
		o.SetVoucher(sum.Voucher.Number, order.Costs{Price: sum.Voucher.PriceGross, Tax: sum.Voucher.Tax})
	}
	o.SetTotals(sum.PriceGross, sum.Tax)
	if processor != nil {
		o.PayLink = processor.PayLink(o)
	}
	o.Submitted()

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	if err := shared.PublishPending(ctx, s.events, o); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	if err := s.vouchers.Redeem(ctx, sum.Voucher); err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, sess.Cart); err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("price", o.Price.String()))
	return o, nil
}

func (s *OrderService) decreaseStock(ctx context.Context, l Line) error {
	p, err := s.products.FindByID(ctx, l.Product.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if !p.ManageStockAmount {
		return nil
	}
	p.DecreaseStockAmount(l.Item.Amount)
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save product stock: %w", err)
	}
	return shared.PublishPending(ctx, s.events, p)
}
