package pricing

import (
	"github.com/shopspring/decimal"
)

// Calculator names registered by default.
const (
	CalculatorGross = "gross"
	CalculatorNet   = "net"
)

// Calculator converts a stored price into net and gross amounts.
type Calculator interface {
	// Name returns the name the calculator is registered under
	Name() string

	// PriceIncludesTax reports whether stored prices are gross prices
	PriceIncludesTax() bool

	// Net returns the net amount of a stored price
	Net(price, productRate, customerRate decimal.Decimal) decimal.Decimal

	// Gross returns the gross amount a customer pays for a stored price
	Gross(price, productRate, customerRate decimal.Decimal) decimal.Decimal

	// ProductTax returns the tax of a stored price at the product rate
	ProductTax(price, productRate decimal.Decimal) decimal.Decimal
}

// GrossCalculator treats stored prices as gross prices at the product rate.
type GrossCalculator struct{}

var _ Calculator = GrossCalculator{}

// Name returns "gross"
func (GrossCalculator) Name() string { return CalculatorGross }

// PriceIncludesTax returns true
func (GrossCalculator) PriceIncludesTax() bool { return true }

// Net removes the product tax from the stored price.
func (GrossCalculator) Net(price, productRate, _ decimal.Decimal) decimal.Decimal {
	return price.Div(factor(productRate))
}

// Gross applies the customer rate to the net price.
func (c GrossCalculator) Gross(price, productRate, customerRate decimal.Decimal) decimal.Decimal {
	return c.Net(price, productRate, customerRate).Mul(factor(customerRate))
}

// ProductTax returns the product tax contained in the stored price.
func (c GrossCalculator) ProductTax(price, productRate decimal.Decimal) decimal.Decimal {
	return price.Sub(price.Div(factor(productRate)))
}

// NetCalculator treats stored prices as net prices.
type NetCalculator struct{}

var _ Calculator = NetCalculator{}

// Name returns "net"
func (NetCalculator) Name() string { return CalculatorNet }

// PriceIncludesTax returns false
func (NetCalculator) PriceIncludesTax() bool { return false }

// Net returns the stored price.
func (NetCalculator) Net(price, _, _ decimal.Decimal) decimal.Decimal {
	return price
}

// Gross adds the customer tax to the stored price.
func (NetCalculator) Gross(price, _, customerRate decimal.Decimal) decimal.Decimal {
	return price.Mul(factor(customerRate))
}

// ProductTax returns the product tax on top of the stored price.
func (NetCalculator) ProductTax(price, productRate decimal.Decimal) decimal.Decimal {
	return price.Mul(factor(productRate)).Sub(price)
}
