package criteria

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lfs/storefront/internal/domain/shared"
)

// DefaultPosition is used for criteria created without an explicit position.
const DefaultPosition = 999

// Kind identifies which subject value a criterion inspects.
type Kind string

const (
	KindCartPrice              Kind = "cart_price"
	KindCombinedLengthAndGirth Kind = "combined_length_and_girth"
	KindCountry                Kind = "country"
	KindHeight                 Kind = "height"
	KindLength                 Kind = "length"
	KindWidth                  Kind = "width"
	KindWeight                 Kind = "weight"
	KindPaymentMethod          Kind = "payment_method"
	KindShippingMethod         Kind = "shipping_method"
	KindDistance               Kind = "distance"
	KindUser                   Kind = "user"
	KindExpression             Kind = "expression"
)

// AllKinds returns every supported criterion kind.
func AllKinds() []Kind {
	return []Kind{
		KindCartPrice,
		KindCombinedLengthAndGirth,
		KindCountry,
		KindHeight,
		KindLength,
		KindWidth,
		KindWeight,
		KindPaymentMethod,
		KindShippingMethod,
		KindDistance,
		KindUser,
		KindExpression,
	}
}

// IsValid returns true if the kind is known
func (k Kind) IsValid() bool {
	return slices.Contains(AllKinds(), k)
}

// Operators returns the operators a criterion of this kind accepts.
func (k Kind) Operators() []Operator {
	switch k {
	case KindCartPrice, KindCombinedLengthAndGirth, KindHeight, KindLength,
		KindWidth, KindWeight, KindDistance:
		return NumberOperators
	case KindCountry, KindUser:
		return SelectionOperators
	case KindPaymentMethod, KindShippingMethod:
		return append(slices.Clone(SelectionOperators), ValidOperators...)
	case KindExpression:
		return ValidOperators
	default:
		return nil
	}
}

// Allows reports whether op belongs to the kind's operator group.
func (k Kind) Allows(op Operator) bool {
	return slices.Contains(k.Operators(), op)
}

// ValueType returns how values of this kind are entered.
func (k Kind) ValueType() ValueType {
	switch k {
	case KindCountry, KindPaymentMethod, KindShippingMethod, KindUser:
		return ValueTypeMultipleSelect
	default:
		return ValueTypeInput
	}
}

// OwnerType names the kind of object a criterion list is attached to.
type OwnerType string

const (
	OwnerShippingMethod      OwnerType = "shipping_method"
	OwnerShippingMethodPrice OwnerType = "shipping_method_price"
	OwnerPaymentMethod       OwnerType = "payment_method"
	OwnerPaymentMethodPrice  OwnerType = "payment_method_price"
	OwnerCustomerTax         OwnerType = "customer_tax"
	OwnerDiscount            OwnerType = "discount"
)

// IsValid returns true if the owner type is known
func (o OwnerType) IsValid() bool {
	switch o {
	case OwnerShippingMethod, OwnerShippingMethodPrice, OwnerPaymentMethod,
		OwnerPaymentMethodPrice, OwnerCustomerTax, OwnerDiscount:
		return true
	default:
		return false
	}
}

// Criterion is a stored predicate attached to an owner. Value holds the
// threshold of number kinds, Values the id or country set of selection
// kinds and Expression the JSONLogic rule of the expression kind.
type Criterion struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerType  OwnerType       `gorm:"type:varchar(40);not null;index:idx_criteria_owner,priority:1" json:"owner_type"`
	OwnerID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_criteria_owner,priority:2" json:"owner_id"`
	Kind       Kind            `gorm:"type:varchar(40);not null" json:"kind"`
	Operator   Operator        `gorm:"not null;default:0" json:"operator"`
	Position   int             `gorm:"not null" json:"position"`
	Value      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"value"`
	Values     []string        `gorm:"serializer:json;type:text" json:"values,omitempty"`
	Expression string          `gorm:"type:text" json:"expression,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Criterion) TableName() string {
	return "criteria"
}

// NewCriterion creates a criterion after checking the operator fits the kind.
func NewCriterion(ownerType OwnerType, ownerID uuid.UUID, kind Kind, op Operator) (*Criterion, error) {
	if !ownerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OWNER", "Unknown criteria owner type")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Criteria owner id cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown criterion kind")
	}
	if !kind.Allows(op) {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator "+op.String()+" is not allowed for "+string(kind))
	}
	now := time.Now()
	return &Criterion{
		ID:        uuid.New(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Kind:      kind,
		Operator:  op,
		Position:  DefaultPosition,
		Value:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// WithValue sets the number threshold.
func (c *Criterion) WithValue(v decimal.Decimal) *Criterion {
	c.Value = v
	return c
}

// WithValues sets the selection set.
func (c *Criterion) WithValues(values ...string) *Criterion {
	c.Values = values
	return c
}

// WithPosition sets the position used for ordering.
func (c *Criterion) WithPosition(position int) *Criterion {
	c.Position = position
	return c
}

// WithExpression sets the JSONLogic rule.
func (c *Criterion) WithExpression(expr string) *Criterion {
	c.Expression = expr
	return c
}

// SortByPosition orders criteria by position, keeping insertion order for ties.
func SortByPosition(list []Criterion) {
	slices.SortStableFunc(list, func(a, b Criterion) int {
		return a.Position - b.Position
	})
}
