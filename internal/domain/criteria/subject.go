package criteria

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxMethodDepth bounds nested method validity checks. A shipping method
// criterion may ask whether a payment method is valid, whose criteria may
// in turn ask about shipping methods.
const maxMethodDepth = 4

// ProductFacts are the product values criteria can inspect.
type ProductFacts struct {
	ID     uuid.UUID
	Price  decimal.Decimal
	Weight float64
	Width  float64
	Height float64
	Length float64
}

// Line is one cart line reduced to what criteria need.
type Line struct {
	ProductID uuid.UUID
	Amount    float64
	Weight    float64
	Width     float64
	Height    float64
	Length    float64
}

// CartFacts are the cart values criteria can inspect.
type CartFacts struct {
	PriceGross decimal.Decimal
	Lines      []Line
}

// MethodValidator answers whether a shipping or payment method is valid for
// a subject. kind is OwnerShippingMethod or OwnerPaymentMethod.
type MethodValidator interface {
	IsMethodValid(ctx context.Context, kind OwnerType, id uuid.UUID, s *Subject) bool
}

// ExpressionEvaluator evaluates an expression criterion against the subject data.
type ExpressionEvaluator interface {
	Evaluate(ctx context.Context, expression string, data map[string]any) (bool, error)
}

// Subject is the context a criteria list is evaluated against. Product facts
// take precedence over cart facts when both are set.
type Subject struct {
	Product          *ProductFacts
	Cart             *CartFacts
	Country          string
	ShippingMethodID uuid.UUID
	PaymentMethodID  uuid.UUID
	UserID           uuid.UUID
	Distance         float64

	Methods     MethodValidator
	Expressions ExpressionEvaluator

	depth int
}

// ForProduct returns a copy of the subject evaluated against a single product.
func (s *Subject) ForProduct(p *ProductFacts) *Subject {
	cp := *s
	cp.Product = p
	return &cp
}

// Nested returns a copy used for evaluating another method's criteria.
// The second result is false once the nesting limit is reached.
func (s *Subject) Nested() (*Subject, bool) {
	if s.depth >= maxMethodDepth {
		return nil, false
	}
	cp := *s
	cp.depth++
	return &cp, true
}

// Data returns the subject as a plain map, the document expression rules see.
func (s *Subject) Data() map[string]any {
	data := map[string]any{
		"country":            s.Country,
		"distance":           s.Distance,
		"user_id":            idString(s.UserID),
		"shipping_method_id": idString(s.ShippingMethodID),
		"payment_method_id":  idString(s.PaymentMethodID),
	}
	if s.Product != nil {
		price, _ := s.Product.Price.Float64()
		data["product"] = map[string]any{
			"id":     s.Product.ID.String(),
			"price":  price,
			"weight": s.Product.Weight,
			"width":  s.Product.Width,
			"height": s.Product.Height,
			"length": s.Product.Length,
		}
	}
	if s.Cart != nil {
		gross, _ := s.Cart.PriceGross.Float64()
		lines := make([]any, 0, len(s.Cart.Lines))
		var items float64
		for _, l := range s.Cart.Lines {
			items += l.Amount
			lines = append(lines, map[string]any{
				"product_id": l.ProductID.String(),
				"amount":     l.Amount,
				"weight":     l.Weight,
				"width":      l.Width,
				"height":     l.Height,
				"length":     l.Length,
			})
		}
		data["cart"] = map[string]any{
			"price_gross":     gross,
			"amount_of_items": items,
			"lines":           lines,
		}
	}
	return data
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
