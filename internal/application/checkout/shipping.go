package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/customer"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrMethodNotValid is returned when a customer selects a method whose
// criteria do not hold.
var ErrMethodNotValid = shared.NewDomainError("METHOD_NOT_VALID", "Method is not valid for the current cart")

// ErrCountryNotShipped is returned when the shop does not ship to a country
var ErrCountryNotShipped = shared.NewDomainError("COUNTRY_NOT_SHIPPED", "Shop does not ship to this country")

// ShippingService applies the shipping rules to a checkout session.
type ShippingService struct {
	methods       shipping.Repository
	customers     customer.Repository
	deliveryTimes catalog.DeliveryTimeRepository
	checker       *criteria.Checker
	prices        ProductPricer
	calculators   appcatalog.CalculatorGetter
	logger        *zap.Logger
	now           func() time.Time
}

// ShippingOption configures a ShippingService
type ShippingOption func(*ShippingService)

// WithShippingLogger sets the logger
func WithShippingLogger(logger *zap.Logger) ShippingOption {
	return func(s *ShippingService) {
		s.logger = logger
	}
}

// WithShippingClock replaces the clock used for order time calculations
func WithShippingClock(now func() time.Time) ShippingOption {
	return func(s *ShippingService) {
		s.now = now
	}
}

// NewShippingService creates a new ShippingService
func NewShippingService(
	methods shipping.Repository,
	customers customer.Repository,
	deliveryTimes catalog.DeliveryTimeRepository,
	checker *criteria.Checker,
	prices ProductPricer,
	calculators appcatalog.CalculatorGetter,
	opts ...ShippingOption,
) *ShippingService {
	s := &ShippingService{
		methods:       methods,
		customers:     customers,
		deliveryTimes: deliveryTimes,
		checker:       checker,
		prices:        prices,
		calculators:   calculators,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ShippingService) active(ctx context.Context) ([]shipping.Method, error) {
	methods, err := s.methods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping methods: %w", err)
	}
	return methods, nil
}

// ValidMethods returns the shipping methods offered to the session
func (s *ShippingService) ValidMethods(ctx context.Context, sess *Session) ([]shipping.Method, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return shipping.ValidMethods(ctx, s.checker, active, sess.Subject)
}

// SelectedMethod returns the customer's choice, else the default method.
// It returns nil when no method applies.
func (s *ShippingService) SelectedMethod(ctx context.Context, sess *Session) (*shipping.Method, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return shipping.SelectedMethod(ctx, s.checker, active, sess.Customer.ShippingMethodID(), sess.Subject)
}

// SelectMethod stores the customer's choice. The method must be valid.
func (s *ShippingService) SelectMethod(ctx context.Context, sess *Session, id uuid.UUID) error {
	valid, err := s.ValidMethods(ctx, sess)
	if err != nil {
		return err
	}
	found := false
	for _, m := range valid {
		if m.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrMethodNotValid
	}

	cust, err := ensureCustomer(sess)
	if err != nil {
		return err
	}
	cust.SelectShippingMethod(&id)
	if err := s.customers.Save(ctx, cust); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	sess.Subject.ShippingMethodID = id
	return nil
}

// SelectCountry stores the country chosen in the cart and replaces method
// selections that are not valid for the new country.
func (s *ShippingService) SelectCountry(ctx context.Context, sess *Session, code string) error {
	if !sess.Shop.ShipsTo(code) {
		return ErrCountryNotShipped
	}
	cust, err := ensureCustomer(sess)
	if err != nil {
		return err
	}
	cust.SelectCountry(code)
	sess.Subject.Country = cust.Country()
	if err := s.customers.Save(ctx, cust); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	_, err = s.UpdateToValid(ctx, sess)
	return err
}

// UpdateToValid replaces an invalid selection with the default method and
// saves the customer if the selection changed. It returns the selected id,
// uuid.Nil when no method is valid.
func (s *ShippingService) UpdateToValid(ctx context.Context, sess *Session) (uuid.UUID, error) {
	if sess.Customer == nil {
		return uuid.Nil, nil
	}
	active, err := s.active(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	current := sess.Customer.ShippingMethodID()
	id, changed, err := shipping.UpdateToValid(ctx, s.checker, active, current, sess.Subject)
	if err != nil {
		return current, err
	}
	if !changed {
		return id, nil
	}

	s.logger.Info("Replacing invalid shipping method selection",
		zap.String("customer_id", sess.Customer.ID.String()),
		zap.String("from", current.String()),
		zap.String("to", id.String()))
	if id == uuid.Nil {
		sess.Customer.SelectShippingMethod(nil)
	} else {
		sess.Customer.SelectShippingMethod(&id)
	}
	if err := s.customers.Save(ctx, sess.Customer); err != nil {
		return id, fmt.Errorf("failed to save customer: %w", err)
	}
	sess.Subject.ShippingMethodID = id
	return id, nil
}

// Costs returns the costs of m for the session. A nil method costs nothing.
func (s *ShippingService) Costs(ctx context.Context, sess *Session, m *shipping.Method) (shipping.Costs, error) {
	if m == nil {
		return shipping.ZeroCosts(), nil
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "costs", telemetry.WithAttribute(telemetry.SpanAttrShipping, m.ID.String()))
	defer span.End()

	price, err := shipping.FirstValidPrice(ctx, s.checker, m, sess.Subject)
	if err != nil {
		telemetry.RecordError(span, err)
		return shipping.ZeroCosts(), err
	}
	rate, err := s.prices.CustomerTaxRate(ctx, sess.Subject, m.TaxRate())
	if err != nil {
		telemetry.RecordError(span, err)
		return shipping.ZeroCosts(), err
	}
	calc := s.calculators.GetCalculatorOrDefault(m.PriceCalculator)
	return shipping.CostsFor(m, price, calc, rate), nil
}

// SelectedCosts returns the selected method and its costs
func (s *ShippingService) SelectedCosts(ctx context.Context, sess *Session) (*shipping.Method, shipping.Costs, error) {
	m, err := s.SelectedMethod(ctx, sess)
	if err != nil {
		return nil, shipping.ZeroCosts(), err
	}
	costs, err := s.Costs(ctx, sess, m)
	return m, costs, err
}

// ProductDeliveryTime returns the delivery time of a product. For the cart
// the selected method is used when it is valid for the product, otherwise
// the default method; outside the cart the first method valid for the
// product applies.
func (s *ShippingService) ProductDeliveryTime(ctx context.Context, sess *Session, r *catalog.ResolvedProduct, forCart bool) (catalog.DeliveryTime, error) {
	src := r.DeliverySource()
	in := shipping.DeliveryInput{
		Shop:        sess.Shop.DeliveryTime,
		StockAmount: src.StockAmount,
		OrderedAt:   src.OrderedAt,
	}

	if src.ManualDeliveryTime && src.DeliveryTimeID != nil {
		dt, err := s.deliveryTime(ctx, *src.DeliveryTimeID)
		if err != nil {
			return catalog.DeliveryTime{}, err
		}
		in.Manual = dt
	}
	if in.Manual == nil {
		m, err := s.deliveryMethod(ctx, sess, src, forCart)
		if err != nil {
			return catalog.DeliveryTime{}, err
		}
		if m != nil {
			in.Method = m.DeliveryTime
		}
	}
	if src.OrderTimeID != nil {
		dt, err := s.deliveryTime(ctx, *src.OrderTimeID)
		if err != nil {
			return catalog.DeliveryTime{}, err
		}
		in.OrderTime = dt
	}
	return shipping.ProductDeliveryTime(in, s.now()), nil
}

func (s *ShippingService) deliveryMethod(ctx context.Context, sess *Session, r *catalog.ResolvedProduct, forCart bool) (*shipping.Method, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	productSubject := sess.ProductSubject(r, r.Pricing.Price())
	if !forCart {
		return shipping.FirstValidMethod(ctx, s.checker, active, productSubject)
	}

	selected, err := shipping.SelectedMethod(ctx, s.checker, active, sess.Customer.ShippingMethodID(), sess.Subject)
	if err != nil || selected == nil {
		return selected, err
	}
	ok, err := s.checker.IsValid(ctx, selected, productSubject)
	if err != nil {
		return nil, err
	}
	if ok {
		return selected, nil
	}
	return shipping.FirstValidMethod(ctx, s.checker, active, sess.Subject)
}

func (s *ShippingService) deliveryTime(ctx context.Context, id uuid.UUID) (*catalog.DeliveryTime, error) {
	dt, err := s.deliveryTimes.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery time: %w", err)
	}
	return dt, nil
}

// DeliveryInfo returns whether a product can be delivered and its delivery
// time outside the cart.
func (s *ShippingService) DeliveryInfo(ctx context.Context, sess *Session, r *catalog.ResolvedProduct) (shipping.DeliveryInfo, error) {
	dt, err := s.ProductDeliveryTime(ctx, sess, r, false)
	if err != nil {
		return shipping.DeliveryInfo{}, err
	}
	return shipping.DeliveryInfo{Deliverable: r.DeliverySource().Deliverable, DeliveryTime: dt}, nil
}

// CartDeliveryTime returns the longest delivery time of the cart lines.
// The second result is false for an empty cart.
func (s *ShippingService) CartDeliveryTime(ctx context.Context, sess *Session) (catalog.DeliveryTime, bool, error) {
	var (
		longest catalog.DeliveryTime
		found   bool
	)
	for _, line := range sess.Lines {
		dt, err := s.ProductDeliveryTime(ctx, sess, line.Product, true)
		if err != nil {
			return catalog.DeliveryTime{}, false, err
		}
		if !found || dt.AsHours().Max > longest.AsHours().Max {
			longest = dt
			found = true
		}
	}
	return longest, found, nil
}

// ensureCustomer returns the session customer, creating it in memory when
// the visitor has none yet.
func ensureCustomer(sess *Session) (*customer.Customer, error) {
	if sess.Customer != nil {
		return sess.Customer, nil
	}
	c, err := customer.New(sess.Identity.SessionID, sess.Identity.UserID)
	if err != nil {
		return nil, err
	}
	sess.Customer = c
	return c, nil
}
