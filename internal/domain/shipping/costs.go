package shipping

import (
	"time"

	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// Costs is the price and included tax of a shipping method.
type Costs struct {
	Price decimal.Decimal `json:"price"`
	Tax   decimal.Decimal `json:"tax"`
}

// ZeroCosts is returned when no shipping method applies
func ZeroCosts() Costs {
	return Costs{Price: decimal.Zero, Tax: decimal.Zero}
}

// CostsFor computes the costs of method m. price is the first valid
// additional price or nil. rate is the customer tax rate when one applies,
// otherwise the method tax rate.
func CostsFor(m *Method, price *MethodPrice, calc pricing.Calculator, rate decimal.Decimal) Costs {
	if m == nil {
		return ZeroCosts()
	}
	if price != nil {
		return Costs{
			Price: price.Price,
			Tax:   pricing.TaxIncluded(price.Price, m.TaxRate()),
		}
	}
	gross := calc.Gross(m.Price, rate, rate)
	net := calc.Net(m.Price, rate, rate)
	return Costs{Price: gross, Tax: gross.Sub(net)}
}

// DeliveryInput collects what the delivery time of a product depends on.
type DeliveryInput struct {
	// Manual is the product's own delivery time when it sets one manually
	Manual *catalog.DeliveryTime
	// Method is the delivery time of the relevant shipping method
	Method *catalog.DeliveryTime
	// Shop is the shop wide fallback
	Shop *catalog.DeliveryTime

	StockAmount float64
	OrderTime   *catalog.DeliveryTime
	OrderedAt   *time.Time
}

// ProductDeliveryTime resolves the delivery time: manual time, then the
// shipping method, then the shop, then 1-2 days. Products out of stock with
// an order time add the order time left since they were ordered.
func ProductDeliveryTime(in DeliveryInput, now time.Time) catalog.DeliveryTime {
	var dt catalog.DeliveryTime
	switch {
	case in.Manual != nil:
		dt = *in.Manual
	case in.Method != nil:
		dt = *in.Method
	case in.Shop != nil:
		dt = *in.Shop
	default:
		dt = catalog.DefaultDeliveryTime()
	}

	if in.StockAmount <= 0 && in.OrderTime != nil {
		var days float64
		if in.OrderedAt != nil {
			days = float64(daysBetween(*in.OrderedAt, now))
		}
		dt = dt.Add(in.OrderTime.SubtractDays(days)).AsReasonableUnit()
	}
	return dt.Round()
}

// daysBetween counts calendar days like a date difference does.
func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DeliveryInfo is the delivery time of a product and whether it can be
// delivered at all.
type DeliveryInfo struct {
	Deliverable  bool                 `json:"deliverable"`
	DeliveryTime catalog.DeliveryTime `json:"delivery_time"`
}
