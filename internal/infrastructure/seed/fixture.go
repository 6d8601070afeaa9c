// Package seed loads catalog, shipping and payment fixtures from YAML files.
package seed

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Errors returned by the seed package.
var (
	// ErrInvalidFixture is returned when a fixture fails validation
	ErrInvalidFixture = errors.New("seed: invalid fixture")
	// ErrFixtureNotFound is returned when the fixture file does not exist
	ErrFixtureNotFound = errors.New("seed: fixture file not found")
)

// Fixture is the root of a seed file.
type Fixture struct {
	Shop            *ShopFixture            `yaml:"shop,omitempty"`
	Taxes           []TaxFixture            `yaml:"taxes,omitempty"`
	DeliveryTimes   []DeliveryTimeFixture   `yaml:"delivery_times,omitempty"`
	Categories      []CategoryFixture       `yaml:"categories,omitempty"`
	Properties      []PropertyFixture       `yaml:"properties,omitempty"`
	Products        []ProductFixture        `yaml:"products,omitempty"`
	ShippingMethods []ShippingMethodFixture `yaml:"shipping_methods,omitempty"`
	PaymentMethods  []PaymentMethodFixture  `yaml:"payment_methods,omitempty"`
	Pages           []PageFixture           `yaml:"pages,omitempty"`
}

// ShopFixture configures the shop row.
type ShopFixture struct {
	Name            string   `yaml:"name"`
	DefaultCountry  string   `yaml:"default_country"`
	Countries       []string `yaml:"countries,omitempty"`
	PriceCalculator string   `yaml:"price_calculator,omitempty"`
	DeliveryTime    string   `yaml:"delivery_time,omitempty"`
}

// TaxFixture is a named tax rate. Products and methods refer to it by name.
type TaxFixture struct {
	Name string          `yaml:"name"`
	Rate decimal.Decimal `yaml:"rate"`
}

// DeliveryTimeFixture is a named delivery time.
type DeliveryTimeFixture struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	// Unit is one of hours, days, weeks, months
	Unit string `yaml:"unit"`
}

// CategoryFixture is a category with its children.
type CategoryFixture struct {
	Name     string            `yaml:"name"`
	Slug     string            `yaml:"slug"`
	Position int               `yaml:"position,omitempty"`
	Children []CategoryFixture `yaml:"children,omitempty"`
}

// PropertyFixture is a filterable property.
type PropertyFixture struct {
	Name string `yaml:"name"`
	// Type is one of number, text, select
	Type    string    `yaml:"type"`
	Unit    string    `yaml:"unit,omitempty"`
	Options []string  `yaml:"options,omitempty"`
	Steps   []float64 `yaml:"steps,omitempty"`
}

// ProductFixture is a product with optional variants.
type ProductFixture struct {
	Name         string            `yaml:"name"`
	Slug         string            `yaml:"slug"`
	SKU          string            `yaml:"sku,omitempty"`
	Price        decimal.Decimal   `yaml:"price"`
	SalePrice    *decimal.Decimal  `yaml:"sale_price,omitempty"`
	Tax          string            `yaml:"tax,omitempty"`
	Inactive     bool              `yaml:"inactive,omitempty"`
	Weight       float64           `yaml:"weight,omitempty"`
	Width        float64           `yaml:"width,omitempty"`
	Height       float64           `yaml:"height,omitempty"`
	Length       float64           `yaml:"length,omitempty"`
	Stock        *float64          `yaml:"stock,omitempty"`
	DeliveryTime string            `yaml:"delivery_time,omitempty"`
	Categories   []string          `yaml:"categories,omitempty"`
	Properties   map[string]string `yaml:"properties,omitempty"`
	Variants     []VariantFixture  `yaml:"variants,omitempty"`
}

// VariantFixture is a variant of a product. Unset fields are inherited.
type VariantFixture struct {
	Slug       string            `yaml:"slug"`
	Name       string            `yaml:"name,omitempty"`
	Price      *decimal.Decimal  `yaml:"price,omitempty"`
	Position   int               `yaml:"position,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// CriterionFixture restricts a method, e.g. {kind: weight, operator: "<", value: 30}.
type CriterionFixture struct {
	Kind       string          `yaml:"kind"`
	Operator   string          `yaml:"operator"`
	Value      decimal.Decimal `yaml:"value,omitempty"`
	Values     []string        `yaml:"values,omitempty"`
	Expression string          `yaml:"expression,omitempty"`
}

// MethodPriceFixture is an additional criteria dependent method price.
type MethodPriceFixture struct {
	Price    decimal.Decimal    `yaml:"price"`
	Priority int                `yaml:"priority,omitempty"`
	Criteria []CriterionFixture `yaml:"criteria,omitempty"`
}

// ShippingMethodFixture is an active shipping method.
type ShippingMethodFixture struct {
	Name         string               `yaml:"name"`
	Price        decimal.Decimal      `yaml:"price"`
	Priority     int                  `yaml:"priority,omitempty"`
	Tax          string               `yaml:"tax,omitempty"`
	DeliveryTime string               `yaml:"delivery_time,omitempty"`
	Criteria     []CriterionFixture   `yaml:"criteria,omitempty"`
	Prices       []MethodPriceFixture `yaml:"prices,omitempty"`
}

// PaymentMethodFixture is an active payment method.
type PaymentMethodFixture struct {
	Name      string               `yaml:"name"`
	Price     decimal.Decimal      `yaml:"price"`
	Priority  int                  `yaml:"priority,omitempty"`
	Processor string               `yaml:"processor,omitempty"`
	Tax       string               `yaml:"tax,omitempty"`
	Criteria  []CriterionFixture   `yaml:"criteria,omitempty"`
	Prices    []MethodPriceFixture `yaml:"prices,omitempty"`
}

// PageFixture is a static page.
type PageFixture struct {
	Title  string `yaml:"title"`
	Slug   string `yaml:"slug"`
	Body   string `yaml:"body,omitempty"`
	Active bool   `yaml:"active,omitempty"`
}

// LoadFromFile reads and validates a fixture file.
func LoadFromFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
		}
		return nil, fmt.Errorf("seed: failed to read file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a fixture.
func LoadFromBytes(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: failed to parse YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names, slugs and references within the fixture.
func (f *Fixture) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	taxes := make(map[string]bool, len(f.Taxes))
	for i, t := range f.Taxes {
		if t.Name == "" {
			add("taxes[%d]: name is required", i)
		}
		taxes[t.Name] = true
	}
	times := make(map[string]bool, len(f.DeliveryTimes))
	for i, dt := range f.DeliveryTimes {
		if dt.Name == "" {
			add("delivery_times[%d]: name is required", i)
		}
		if _, ok := deliveryTimeUnits[dt.Unit]; !ok {
			add("delivery_times[%d]: unknown unit %q", i, dt.Unit)
		}
		if dt.Max < dt.Min {
			add("delivery_times[%d]: max is below min", i)
		}
		times[dt.Name] = true
	}
	if f.Shop != nil && f.Shop.DeliveryTime != "" && !times[f.Shop.DeliveryTime] {
		add("shop: unknown delivery time %q", f.Shop.DeliveryTime)
	}

	categories := make(map[string]bool)
	var walk func(path string, list []CategoryFixture)
	walk = func(path string, list []CategoryFixture) {
		for i, c := range list {
			p := fmt.Sprintf("%s[%d]", path, i)
			if c.Slug == "" {
				add("%s: slug is required", p)
			}
			if categories[c.Slug] {
				add("%s: duplicate category slug %q", p, c.Slug)
			}
			categories[c.Slug] = true
			walk(p+".children", c.Children)
		}
	}
	walk("categories", f.Categories)

	properties := make(map[string]PropertyFixture, len(f.Properties))
	for i, p := range f.Properties {
		if _, ok := propertyTypes[p.Type]; !ok {
			add("properties[%d]: unknown type %q", i, p.Type)
		}
		if p.Type == "select" && len(p.Options) == 0 {
			add("properties[%d]: select property needs options", i)
		}
		properties[p.Name] = p
	}

	checkValues := func(path string, values map[string]string) {
		for name, value := range values {
			p, ok := properties[name]
			if !ok {
				add("%s: unknown property %q", path, name)
				continue
			}
			if p.Type == "select" && !slices.Contains(p.Options, value) {
				add("%s: %q is no option of %q", path, value, name)
			}
		}
	}

	slugs := make(map[string]bool)
	for i, p := range f.Products {
		path := fmt.Sprintf("products[%d]", i)
		if slugs[p.Slug] {
			add("%s: duplicate product slug %q", path, p.Slug)
		}
		slugs[p.Slug] = true
		if p.Tax != "" && !taxes[p.Tax] {
			add("%s: unknown tax %q", path, p.Tax)
		}
		if p.DeliveryTime != "" && !times[p.DeliveryTime] {
			add("%s: unknown delivery time %q", path, p.DeliveryTime)
		}
		for _, c := range p.Categories {
			if !categories[c] {
				add("%s: unknown category %q", path, c)
			}
		}
		checkValues(path, p.Properties)
		for j, v := range p.Variants {
			vpath := fmt.Sprintf("%s.variants[%d]", path, j)
			if slugs[v.Slug] {
				add("%s: duplicate product slug %q", vpath, v.Slug)
			}
			slugs[v.Slug] = true
			checkValues(vpath, v.Properties)
		}
	}

	checkCriteria := func(path string, list []CriterionFixture) {
		for i, c := range list {
			if _, err := c.operator(); err != nil {
				add("%s.criteria[%d]: %v", path, i, err)
			}
			if !criteria.Kind(c.Kind).IsValid() {
				add("%s.criteria[%d]: unknown kind %q", path, i, c.Kind)
			}
		}
	}
	for i, m := range f.ShippingMethods {
		path := fmt.Sprintf("shipping_methods[%d]", i)
		if m.Tax != "" && !taxes[m.Tax] {
			add("%s: unknown tax %q", path, m.Tax)
		}
		if m.DeliveryTime != "" && !times[m.DeliveryTime] {
			add("%s: unknown delivery time %q", path, m.DeliveryTime)
		}
		checkCriteria(path, m.Criteria)
		for j, p := range m.Prices {
			checkCriteria(fmt.Sprintf("%s.prices[%d]", path, j), p.Criteria)
		}
	}
	for i, m := range f.PaymentMethods {
		path := fmt.Sprintf("payment_methods[%d]", i)
		if m.Tax != "" && !taxes[m.Tax] {
			add("%s: unknown tax %q", path, m.Tax)
		}
		checkCriteria(path, m.Criteria)
		for j, p := range m.Prices {
			checkCriteria(fmt.Sprintf("%s.prices[%d]", path, j), p.Criteria)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFixture, strings.Join(errs, "; "))
	}
	return nil
}

var operators = map[string]criteria.Operator{
	"=":               criteria.OperatorEqual,
	"<":               criteria.OperatorLessThan,
	"<=":              criteria.OperatorLessThanEqual,
	">":               criteria.OperatorGreaterThan,
	">=":              criteria.OperatorGreaterThanEqual,
	"is_selected":     criteria.OperatorIsSelected,
	"is_not_selected": criteria.OperatorIsNotSelected,
	"is_valid":        criteria.OperatorIsValid,
	"is_not_valid":    criteria.OperatorIsNotValid,
	"contains":        criteria.OperatorContains,
}

func (c CriterionFixture) operator() (criteria.Operator, error) {
	op, ok := operators[c.Operator]
	if !ok {
		return 0, fmt.Errorf("unknown operator %q", c.Operator)
	}
	if !criteria.Kind(c.Kind).Allows(op) {
		return 0, fmt.Errorf("operator %q is not allowed for %s", c.Operator, c.Kind)
	}
	return op, nil
}
