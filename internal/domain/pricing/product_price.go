package pricing

import (
	"math"

	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductPrice computes the prices of one resolved product for one customer.
type ProductPrice struct {
	calc            Calculator
	product         *catalog.ResolvedProduct
	productRate     decimal.Decimal
	customerRate    decimal.Decimal
	propertiesPrice decimal.Decimal
}

// PriceOption configures a ProductPrice
type PriceOption func(*ProductPrice)

// WithCustomerTaxRate sets the customer rate. Without it the product rate applies.
func WithCustomerTaxRate(rate decimal.Decimal) PriceOption {
	return func(p *ProductPrice) {
		p.customerRate = rate
	}
}

// WithPropertiesPrice sets the price of the default options of a
// configurable product.
func WithPropertiesPrice(price decimal.Decimal) PriceOption {
	return func(p *ProductPrice) {
		p.propertiesPrice = price
	}
}

// NewProductPrice creates the price view of a product. productRate is the
// rate of the product's tax, zero when it has none.
func NewProductPrice(calc Calculator, product *catalog.ResolvedProduct, productRate decimal.Decimal, opts ...PriceOption) *ProductPrice {
	p := &ProductPrice{
		calc:            calc,
		product:         product,
		productRate:     productRate,
		customerRate:    productRate,
		propertiesPrice: decimal.Zero,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ProductPrice) withProperties(price decimal.Decimal, with bool) decimal.Decimal {
	if with && p.product.Pricing.Configurable {
		return price.Add(p.propertiesPrice)
	}
	return price
}

// Price returns the stored price: the sale price when the product is for
// sale, the standard price otherwise.
func (p *ProductPrice) Price(withProperties bool) decimal.Decimal {
	if p.product.Pricing.ForSale {
		return p.ForSalePrice(withProperties)
	}
	return p.StandardPrice(withProperties)
}

// PriceNet returns the net price
func (p *ProductPrice) PriceNet(withProperties bool) decimal.Decimal {
	return p.calc.Net(p.Price(withProperties), p.productRate, p.customerRate)
}

// PriceGross returns the gross price the customer pays
func (p *ProductPrice) PriceGross(withProperties bool) decimal.Decimal {
	return p.calc.Gross(p.Price(withProperties), p.productRate, p.customerRate)
}

// StandardPrice returns the stored standard price regardless of a sale
func (p *ProductPrice) StandardPrice(withProperties bool) decimal.Decimal {
	return p.withProperties(p.product.Pricing.StandardPrice, withProperties)
}

// StandardPriceNet returns the net standard price
func (p *ProductPrice) StandardPriceNet(withProperties bool) decimal.Decimal {
	return p.calc.Net(p.StandardPrice(withProperties), p.productRate, p.customerRate)
}

// StandardPriceGross returns the gross standard price
func (p *ProductPrice) StandardPriceGross(withProperties bool) decimal.Decimal {
	return p.calc.Gross(p.StandardPrice(withProperties), p.productRate, p.customerRate)
}

// ForSalePrice returns the stored sale price
func (p *ProductPrice) ForSalePrice(withProperties bool) decimal.Decimal {
	return p.withProperties(p.product.Pricing.ForSalePrice, withProperties)
}

// ForSalePriceNet returns the net sale price
func (p *ProductPrice) ForSalePriceNet(withProperties bool) decimal.Decimal {
	return p.calc.Net(p.ForSalePrice(withProperties), p.productRate, p.customerRate)
}

// ForSalePriceGross returns the gross sale price
func (p *ProductPrice) ForSalePriceGross(withProperties bool) decimal.Decimal {
	return p.calc.Gross(p.ForSalePrice(withProperties), p.productRate, p.customerRate)
}

// basePrice divides by the base price amount and yields zero without one.
func (p *ProductPrice) basePrice(price decimal.Decimal) decimal.Decimal {
	if p.product.BasePriceAmount <= 0 {
		return decimal.Zero
	}
	return price.Div(decimal.NewFromFloat(p.product.BasePriceAmount))
}

// BasePrice returns the price per base unit
func (p *ProductPrice) BasePrice(withProperties bool) decimal.Decimal {
	return p.basePrice(p.Price(withProperties))
}

// BasePriceNet returns the net price per base unit
func (p *ProductPrice) BasePriceNet(withProperties bool) decimal.Decimal {
	return p.basePrice(p.PriceNet(withProperties))
}

// BasePriceGross returns the gross price per base unit
func (p *ProductPrice) BasePriceGross(withProperties bool) decimal.Decimal {
	return p.basePrice(p.PriceGross(withProperties))
}

// packingAmount is the amount of one package: ceil(1/unit) * unit.
func (p *ProductPrice) packingAmount() decimal.Decimal {
	unit := p.product.PackingUnit
	if unit <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(math.Ceil(1/unit) * unit)
}

// BasePackingPrice returns the price of one package
func (p *ProductPrice) BasePackingPrice(withProperties bool) decimal.Decimal {
	return p.Price(withProperties).Mul(p.packingAmount())
}

// BasePackingPriceNet returns the net price of one package
func (p *ProductPrice) BasePackingPriceNet(withProperties bool) decimal.Decimal {
	return p.PriceNet(withProperties).Mul(p.packingAmount())
}

// BasePackingPriceGross returns the gross price of one package
func (p *ProductPrice) BasePackingPriceGross(withProperties bool) decimal.Decimal {
	return p.PriceGross(withProperties).Mul(p.packingAmount())
}

// CustomerTax returns the tax the customer pays
func (p *ProductPrice) CustomerTax(withProperties bool) decimal.Decimal {
	return p.PriceGross(withProperties).Sub(p.PriceNet(withProperties))
}

// CustomerTaxRate returns the rate applied for the customer
func (p *ProductPrice) CustomerTaxRate() decimal.Decimal {
	return p.customerRate
}

// ProductTax returns the tax at the product rate, independent of the customer
func (p *ProductPrice) ProductTax(withProperties bool) decimal.Decimal {
	return p.calc.ProductTax(p.Price(withProperties), p.productRate)
}

// ProductTaxRate returns the rate of the product's tax
func (p *ProductPrice) ProductTaxRate() decimal.Decimal {
	return p.productRate
}

// PriceIncludesTax reports whether stored prices are gross prices
func (p *ProductPrice) PriceIncludesTax() bool {
	return p.calc.PriceIncludesTax()
}

// EffectivePrice is the price used for sorting and filtering.
func (p *ProductPrice) EffectivePrice() decimal.Decimal {
	return p.Price(true)
}
