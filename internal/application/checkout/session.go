package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/caching"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/customer"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/shop"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Identity names the visitor a checkout belongs to. A known user wins over
// the session.
type Identity struct {
	SessionID string
	UserID    *uuid.UUID
}

// IsZero returns true if neither a session nor a user is known
func (i Identity) IsZero() bool {
	return i.SessionID == "" && i.UserID == nil
}

// ProductPricer resolves products and prices them for a subject.
// It is implemented by the catalog PriceService.
type ProductPricer interface {
	Resolve(ctx context.Context, id uuid.UUID) (*catalog.ResolvedProduct, error)
	Price(ctx context.Context, r *catalog.ResolvedProduct, subject *criteria.Subject) (*pricing.ProductPrice, error)
	CustomerTaxRate(ctx context.Context, subject *criteria.Subject, fallback decimal.Decimal) (decimal.Decimal, error)
}

// DistanceQuery describes the trip a distance provider measures.
type DistanceQuery struct {
	FromCountry string
	ToCountry   string
	SessionID   string
	UserID      string
}

// DistanceProvider returns the shipping distance of a visitor in kilometers.
type DistanceProvider interface {
	Distance(ctx context.Context, q DistanceQuery) (float64, error)
}

// Line is a priced cart line. Prices are per unit.
type Line struct {
	Item       cart.Item
	Product    *catalog.ResolvedProduct
	Price      *pricing.ProductPrice
	PriceGross decimal.Decimal
	PriceNet   decimal.Decimal
}

// TotalGross returns the gross line total
func (l Line) TotalGross() decimal.Decimal {
	return l.PriceGross.Mul(decimal.NewFromFloat(l.Item.Amount))
}

// TotalNet returns the net line total
func (l Line) TotalNet() decimal.Decimal {
	return l.PriceNet.Mul(decimal.NewFromFloat(l.Item.Amount))
}

// Session is everything the checkout rules of one visitor depend on.
// Customer and Cart are nil when the visitor has none yet.
type Session struct {
	Identity Identity
	Shop     *shop.Shop
	Customer *customer.Customer
	Cart     *cart.Cart
	Lines    []Line
	Totals   cart.Totals
	Subject  *criteria.Subject
}

// HasItems returns true if the session has a cart with at least one line
func (s *Session) HasItems() bool {
	return s.Cart != nil && len(s.Lines) > 0
}

// ProductSubject narrows the subject to a single product
func (s *Session) ProductSubject(r *catalog.ResolvedProduct, price decimal.Decimal) *criteria.Subject {
	return s.Subject.ForProduct(appcatalog.Facts(r, price))
}

// Loader builds checkout sessions.
type Loader struct {
	shops       shop.Repository
	customers   customer.Repository
	carts       cart.Repository
	prices      ProductPricer
	methods     criteria.MethodValidator
	expressions criteria.ExpressionEvaluator
	distance    DistanceProvider
	store       caching.Store
	keys        caching.Keys
	ttl         time.Duration
	logger      *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithExpressions sets the evaluator of expression criteria
func WithExpressions(e criteria.ExpressionEvaluator) LoaderOption {
	return func(l *Loader) {
		l.expressions = e
	}
}

// WithDistance sets the provider of the distance criterion
func WithDistance(d DistanceProvider) LoaderOption {
	return func(l *Loader) {
		l.distance = d
	}
}

// WithCartCache caches carts under the cart key of their user or session
func WithCartCache(store caching.Store, keys caching.Keys, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.store = store
		l.keys = keys
		l.ttl = ttl
	}
}

// WithLoaderLogger sets the logger
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a new Loader
func NewLoader(
	shops shop.Repository,
	customers customer.Repository,
	carts cart.Repository,
	prices ProductPricer,
	methods criteria.MethodValidator,
	opts ...LoaderOption,
) *Loader {
	l := &Loader{
		shops:     shops,
		customers: customers,
		carts:     carts,
		prices:    prices,
		methods:   methods,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the session of a visitor. The cart lines are priced against
// a subject without cart facts first; the cart facts are added afterwards
// so method and tax criteria see the whole cart.
func (l *Loader) Load(ctx context.Context, id Identity) (*Session, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "load_session")
	defer span.End()

	sh, err := l.shops.Default(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	cust, err := l.findCustomer(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	c, err := l.findCart(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s := &Session{Identity: id, Shop: sh, Customer: cust, Cart: c}
	s.Subject = l.baseSubject(ctx, s)
	if err := l.priceLines(ctx, s); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "cart.lines", len(s.Lines))
	return s, nil
}

func (l *Loader) findCustomer(ctx context.Context, id Identity) (*customer.Customer, error) {
	var (
		c   *customer.Customer
		err error
	)
	if id.UserID != nil {
		c, err = l.customers.FindByUser(ctx, *id.UserID)
	} else if id.SessionID != "" {
		c, err = l.customers.FindBySession(ctx, id.SessionID)
	} else {
		return nil, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return c, nil
}

func (l *Loader) findCart(ctx context.Context, id Identity) (*cart.Cart, error) {
	var (
		owner string
		find  func() (*cart.Cart, error)
	)
	switch {
	case id.UserID != nil:
		owner = id.UserID.String()
		find = func() (*cart.Cart, error) { return l.carts.FindByUser(ctx, *id.UserID) }
	case id.SessionID != "":
		owner = id.SessionID
		find = func() (*cart.Cart, error) { return l.carts.FindBySession(ctx, id.SessionID) }
	default:
		return nil, nil
	}

	c, err := caching.Remember(ctx, l.store, l.logger, l.keys.Cart(owner), l.ttl, find)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (l *Loader) baseSubject(ctx context.Context, s *Session) *criteria.Subject {
	country := s.Customer.Country()
	if country == "" {
		country = s.Shop.DefaultCountry
	}
	subject := &criteria.Subject{
		Country:          country,
		ShippingMethodID: s.Customer.ShippingMethodID(),
		PaymentMethodID:  s.Customer.PaymentMethodID(),
		Methods:          l.methods,
		Expressions:      l.expressions,
	}
	if s.Identity.UserID != nil {
		subject.UserID = *s.Identity.UserID
	}
	if l.distance != nil {
		q := DistanceQuery{FromCountry: s.Shop.DefaultCountry, ToCountry: country, SessionID: s.Identity.SessionID}
		if s.Identity.UserID != nil {
			q.UserID = s.Identity.UserID.String()
		}
		d, err := l.distance.Distance(ctx, q)
		if err != nil {
			l.logger.Warn("Distance lookup failed, using 0", zap.Error(err))
		} else {
			subject.Distance = d
		}
	}
	return subject
}

func (l *Loader) priceLines(ctx context.Context, s *Session) error {
	if s.Cart == nil {
		s.Totals = cart.Sum(nil)
		return nil
	}

	sums := make([]cart.LinePrice, 0, len(s.Cart.Items))
	facts := make([]criteria.Line, 0, len(s.Cart.Items))
	for _, item := range s.Cart.Items {
		r, err := l.prices.Resolve(ctx, item.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			l.logger.Warn("Skipping cart item of unknown product",
				zap.String("cart_id", s.Cart.ID.String()),
				zap.String("product_id", item.ProductID.String()))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve product %s: %w", item.ProductID, err)
		}
		price, err := l.prices.Price(ctx, r, s.Subject)
		if err != nil {
			return fmt.Errorf("failed to price product %s: %w", r.Slug, err)
		}
		line := Line{
			Item:       item,
			Product:    r,
			Price:      price,
			PriceGross: price.PriceGross(true),
			PriceNet:   price.PriceNet(true),
		}
		s.Lines = append(s.Lines, line)
		sums = append(sums, cart.LinePrice{Amount: item.Amount, PriceGross: line.PriceGross, PriceNet: line.PriceNet})
		facts = append(facts, criteria.Line{
			ProductID: r.ID,
			Amount:    item.Amount,
			Weight:    r.Weight,
			Width:     r.Width,
			Height:    r.Height,
			Length:    r.Length,
		})
	}
	s.Totals = cart.Sum(sums)
	s.Subject.Cart = &criteria.CartFacts{PriceGross: s.Totals.PriceGross, Lines: facts}
	return nil
}
