package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CalculatorGetter looks up price calculators by name. An empty or unknown
// name yields the shop's default calculator.
// This decouples PriceService from the concrete StrategyRegistry implementation
type CalculatorGetter interface {
	GetCalculatorOrDefault(name string) pricing.Calculator
}

// PriceService resolves products and computes their prices for a customer.
type PriceService struct {
	products      catalog.ProductRepository
	properties    catalog.PropertyRepository
	taxes         pricing.TaxRepository
	customerTaxes pricing.CustomerTaxRepository
	checker       *criteria.Checker
	calculators   CalculatorGetter
	store         caching.Store
	keys          caching.Keys
	ttl           time.Duration
	logger        *zap.Logger
}

// PriceServiceOption configures a PriceService
type PriceServiceOption func(*PriceService)

// WithPriceCache caches resolved products in store
func WithPriceCache(store caching.Store, keys caching.Keys, ttl time.Duration) PriceServiceOption {
	return func(s *PriceService) {
		s.store = store
		s.keys = keys
		s.ttl = ttl
	}
}

// WithPriceLogger sets the logger
func WithPriceLogger(logger *zap.Logger) PriceServiceOption {
	return func(s *PriceService) {
		s.logger = logger
	}
}

// NewPriceService creates a new PriceService
func NewPriceService(
	products catalog.ProductRepository,
	properties catalog.PropertyRepository,
	taxes pricing.TaxRepository,
	customerTaxes pricing.CustomerTaxRepository,
	checker *criteria.Checker,
	calculators CalculatorGetter,
	opts ...PriceServiceOption,
) *PriceService {
	s := &PriceService{
		products:      products,
		properties:    properties,
		taxes:         taxes,
		customerTaxes: customerTaxes,
		checker:       checker,
		calculators:   calculators,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve loads a product by id and resolves it against its parent or
// variants.
func (s *PriceService) Resolve(ctx context.Context, id uuid.UUID) (*catalog.ResolvedProduct, error) {
	return caching.Remember(ctx, s.store, s.logger, s.keys.Key("product", id), s.ttl, func() (*catalog.ResolvedProduct, error) {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.resolve(ctx, p)
	})
}

// ResolveBySlug loads a product by slug and resolves it
func (s *PriceService) ResolveBySlug(ctx context.Context, slug string) (*catalog.ResolvedProduct, error) {
	return caching.Remember(ctx, s.store, s.logger, s.keys.Key("product", slug), s.ttl, func() (*catalog.ResolvedProduct, error) {
		p, err := s.products.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return s.resolve(ctx, p)
	})
}

func (s *PriceService) resolve(ctx context.Context, p *catalog.Product) (*catalog.ResolvedProduct, error) {
	var parent *catalog.Product
	var variants []catalog.Product
	var err error

	switch {
	case p.IsVariant() && p.ParentID != nil:
		parent, err = s.products.FindByID(ctx, *p.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent of %s: %w", p.Slug, err)
		}
	case p.IsProductWithVariants():
		variants, err = s.products.FindVariants(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load variants of %s: %w", p.Slug, err)
		}
	}
	r := catalog.Resolve(p, parent, variants)
	return &r, nil
}

// TaxRate returns the rate of the product's tax; products without tax have
// rate 0.
func (s *PriceService) TaxRate(ctx context.Context, r *catalog.ResolvedProduct) (decimal.Decimal, error) {
	if r.TaxID == nil {
		return decimal.Zero, nil
	}
	tax, err := s.taxes.FindByID(ctx, *r.TaxID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load tax: %w", err)
	}
	return tax.Rate, nil
}

// CustomerTaxRate returns the rate of the first customer tax valid for the
// subject, else fallback.
func (s *PriceService) CustomerTaxRate(ctx context.Context, subject *criteria.Subject, fallback decimal.Decimal) (decimal.Decimal, error) {
	taxes, err := s.customerTaxes.FindAll(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load customer taxes: %w", err)
	}
	return pricing.CustomerTaxRate(ctx, s.checker, taxes, subject, fallback)
}

// Calculator returns the calculator of a product
func (s *PriceService) Calculator(r *catalog.ResolvedProduct) pricing.Calculator {
	return s.calculators.GetCalculatorOrDefault(r.PriceCalculator)
}

// Price builds the price view of a resolved product for the subject. The
// subject is narrowed to the product before customer taxes are checked.
func (s *PriceService) Price(ctx context.Context, r *catalog.ResolvedProduct, subject *criteria.Subject) (*pricing.ProductPrice, error) {
	rate, err := s.TaxRate(ctx, r)
	if err != nil {
		return nil, err
	}
	opts := []pricing.PriceOption{}
	if subject != nil {
		customerRate, err := s.CustomerTaxRate(ctx, subject.ForProduct(Facts(r, decimal.Zero)), rate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pricing.WithCustomerTaxRate(customerRate))
	}
	if r.IsConfigurable() {
		extra, err := s.propertiesPrice(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pricing.WithPropertiesPrice(extra))
	}
	return pricing.NewProductPrice(s.Calculator(r), r, rate, opts...), nil
}

func (s *PriceService) propertiesPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	props, err := s.properties.FindForProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load properties: %w", err)
	}
	defaults, err := s.properties.FindValues(ctx, productID, catalog.PropertyValueDefault)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load default values: %w", err)
	}
	return catalog.DefaultOptionsPrice(props, defaults), nil
}

// Facts reduces a resolved product to what criteria inspect
func Facts(r *catalog.ResolvedProduct, price decimal.Decimal) *criteria.ProductFacts {
	return &criteria.ProductFacts{
		ID:     r.ID,
		Price:  price,
		Weight: r.Weight,
		Width:  r.Width,
		Height: r.Height,
		Length: r.Length,
	}
}

// ProductView is a resolved product with its prices for one customer.
type ProductView struct {
	ID               uuid.UUID  `json:"id"`
	Slug             string     `json:"slug"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	SubType          string     `json:"sub_type"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	ShortDescription string     `json:"short_description"`
	Description      string     `json:"description"`
	MetaTitle        string     `json:"meta_title"`
	MetaKeywords     string     `json:"meta_keywords"`
	MetaDescription  string     `json:"meta_description"`
	Active           bool       `json:"active"`
	Deliverable      bool       `json:"deliverable"`
	ForSale          bool       `json:"for_sale"`
	Unit             string     `json:"unit"`
	PriceUnit        string     `json:"price_unit"`
	PackingUnit      float64    `json:"packing_unit,omitempty"`
	BasePriceUnit    string     `json:"base_price_unit,omitempty"`

	Price                 decimal.Decimal `json:"price"`
	PriceNet              decimal.Decimal `json:"price_net"`
	PriceGross            decimal.Decimal `json:"price_gross"`
	StandardPriceGross    decimal.Decimal `json:"standard_price_gross"`
	ForSalePriceGross     decimal.Decimal `json:"for_sale_price_gross"`
	BasePriceGross        decimal.Decimal `json:"base_price_gross"`
	BasePackingPriceGross decimal.Decimal `json:"base_packing_price_gross"`
	CustomerTax           decimal.Decimal `json:"customer_tax"`
	CustomerTaxRate       decimal.Decimal `json:"customer_tax_rate"`
	ProductTaxRate        decimal.Decimal `json:"product_tax_rate"`
	PriceIncludesTax      bool            `json:"price_includes_tax"`
}

// View resolves the product with the given slug and prices it for subject.
func (s *PriceService) View(ctx context.Context, slug string, subject *criteria.Subject) (*ProductView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "price", "view", telemetry.WithAttribute(telemetry.SpanAttrProduct, slug))
	defer span.End()

	r, err := s.ResolveBySlug(ctx, slug)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	price, err := s.Price(ctx, r, subject)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return NewProductView(r, price), nil
}

// NewProductView combines a resolved product and its prices
func NewProductView(r *catalog.ResolvedProduct, p *pricing.ProductPrice) *ProductView {
	return &ProductView{
		ID:                    r.ID,
		Slug:                  r.Slug,
		ParentID:              r.ParentID,
		SubType:               string(r.SubType),
		Name:                  r.Name,
		SKU:                   r.SKU,
		ShortDescription:      r.ShortDescription,
		Description:           r.Description,
		MetaTitle:             r.MetaTitle,
		MetaKeywords:          r.MetaKeywords,
		MetaDescription:       r.MetaDescription,
		Active:                r.Active,
		Deliverable:           r.Deliverable,
		ForSale:               r.Pricing.ForSale,
		Unit:                  r.Unit,
		PriceUnit:             r.PriceUnit,
		PackingUnit:           r.PackingUnit,
		BasePriceUnit:         r.BasePriceUnit,
		Price:                 p.Price(true),
		PriceNet:              p.PriceNet(true),
		PriceGross:            p.PriceGross(true),
		StandardPriceGross:    p.StandardPriceGross(true),
		ForSalePriceGross:     p.ForSalePriceGross(true),
		BasePriceGross:        p.BasePriceGross(true),
		BasePackingPriceGross: p.BasePackingPriceGross(true),
		CustomerTax:           p.CustomerTax(true),
		CustomerTaxRate:       p.CustomerTaxRate(),
		ProductTaxRate:        p.ProductTaxRate(),
		PriceIncludesTax:      p.PriceIncludesTax(),
	}
}
