package criteria

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evaluate reports whether a single criterion holds for the subject. owner is
// the type of object the criterion is attached to. Unknown kinds and
// operators outside the kind's group are never valid.
func Evaluate(ctx context.Context, c *Criterion, s *Subject, owner OwnerType) bool {
	if c == nil || s == nil || !c.Kind.Allows(c.Operator) {
		return false
	}

	switch c.Kind {
	case KindCartPrice:
		return compareNumber(c.Operator, cartPrice(s), c.Value)
	case KindCombinedLengthAndGirth:
		return compareNumber(c.Operator, decimal.NewFromFloat(combinedLengthAndGirth(s)), c.Value)
	case KindHeight:
		return compareNumber(c.Operator, decimal.NewFromFloat(summed(s, func(l Line) float64 { return l.Height }, func(p *ProductFacts) float64 { return p.Height })), c.Value)
	case KindWeight:
		return compareNumber(c.Operator, decimal.NewFromFloat(summed(s, func(l Line) float64 { return l.Weight }, func(p *ProductFacts) float64 { return p.Weight })), c.Value)
	case KindLength:
		return compareNumber(c.Operator, decimal.NewFromFloat(maximum(s, func(l Line) float64 { return l.Length }, func(p *ProductFacts) float64 { return p.Length })), c.Value)
	case KindWidth:
		return compareNumber(c.Operator, decimal.NewFromFloat(maximum(s, func(l Line) float64 { return l.Width }, func(p *ProductFacts) float64 { return p.Width })), c.Value)
	case KindDistance:
		return compareNumber(c.Operator, decimal.NewFromFloat(s.Distance), c.Value)
	case KindCountry:
		in := slices.ContainsFunc(c.Values, func(v string) bool {
			return strings.EqualFold(v, s.Country)
		})
		return selected(c.Operator, in)
	case KindUser:
		return selected(c.Operator, s.UserID != uuid.Nil && slices.Contains(c.Values, s.UserID.String()))
	case KindShippingMethod:
		return evaluateMethod(ctx, c, s, owner, OwnerShippingMethod, s.ShippingMethodID)
	case KindPaymentMethod:
		return evaluateMethod(ctx, c, s, owner, OwnerPaymentMethod, s.PaymentMethodID)
	case KindExpression:
		return evaluateExpression(ctx, c, s)
	default:
		return false
	}
}

func compareNumber(op Operator, actual, want decimal.Decimal) bool {
	switch op {
	case OperatorEqual:
		return actual.Equal(want)
	case OperatorLessThan:
		return actual.LessThan(want)
	case OperatorLessThanEqual:
		return actual.LessThanOrEqual(want)
	case OperatorGreaterThan:
		return actual.GreaterThan(want)
	case OperatorGreaterThanEqual:
		return actual.GreaterThanOrEqual(want)
	default:
		return false
	}
}

func selected(op Operator, in bool) bool {
	if op == OperatorIsSelected {
		return in
	}
	return !in
}

func cartPrice(s *Subject) decimal.Decimal {
	if s.Product != nil {
		return s.Product.Price
	}
	if s.Cart != nil {
		return s.Cart.PriceGross
	}
	return decimal.Zero
}

// combinedLengthAndGirth is 2*width + 2*height + length. For a cart the widest
// and longest items count while heights stack.
func combinedLengthAndGirth(s *Subject) float64 {
	if s.Product != nil {
		return 2*s.Product.Width + 2*s.Product.Height + s.Product.Length
	}
	if s.Cart == nil {
		return 0
	}
	var maxWidth, maxLength, height float64
	for _, l := range s.Cart.Lines {
		maxWidth = max(maxWidth, l.Width)
		maxLength = max(maxLength, l.Length)
		height += l.Height
	}
	return 2*maxWidth + 2*height + maxLength
}

func summed(s *Subject, line func(Line) float64, product func(*ProductFacts) float64) float64 {
	if s.Product != nil {
		return product(s.Product)
	}
	if s.Cart == nil {
		return 0
	}
	var total float64
	for _, l := range s.Cart.Lines {
		total += line(l) * l.Amount
	}
	return total
}

func maximum(s *Subject, line func(Line) float64, product func(*ProductFacts) float64) float64 {
	if s.Product != nil {
		return product(s.Product)
	}
	if s.Cart == nil {
		return 0
	}
	var m float64
	for _, l := range s.Cart.Lines {
		m = max(m, line(l))
	}
	return m
}

func evaluateMethod(ctx context.Context, c *Criterion, s *Subject, owner, kind OwnerType, selectedID uuid.UUID) bool {
	switch c.Operator {
	case OperatorIsSelected, OperatorIsNotSelected:
		// A method cannot depend on which method of its own kind is selected.
		if owner == kind {
			return false
		}
		in := selectedID != uuid.Nil && slices.Contains(c.Values, selectedID.String())
		return selected(c.Operator, in)
	case OperatorIsValid, OperatorIsNotValid:
		if s.Methods == nil {
			return false
		}
		nested, ok := s.Nested()
		if !ok {
			return false
		}
		want := c.Operator == OperatorIsValid
		for _, raw := range c.Values {
			id, err := uuid.Parse(raw)
			if err != nil {
				return false
			}
			if s.Methods.IsMethodValid(ctx, kind, id, nested) != want {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func evaluateExpression(ctx context.Context, c *Criterion, s *Subject) bool {
	if s.Expressions == nil || strings.TrimSpace(c.Expression) == "" {
		return false
	}
	ok, err := s.Expressions.Evaluate(ctx, c.Expression, s.Data())
	if err != nil {
		return false
	}
	if c.Operator == OperatorIsNotValid {
		return !ok
	}
	return ok
}

// IsValid reports whether every criterion in the list holds. An empty list
// is valid. Criteria are checked in position order.
func IsValid(ctx context.Context, list []Criterion, s *Subject, owner OwnerType) bool {
	ordered := slices.Clone(list)
	SortByPosition(ordered)
	for i := range ordered {
		if !Evaluate(ctx, &ordered[i], s, owner) {
			return false
		}
	}
	return true
}
