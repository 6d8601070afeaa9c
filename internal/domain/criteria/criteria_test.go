package criteria

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func number(kind Kind, op Operator, value float64) *Criterion {
	return &Criterion{Kind: kind, Operator: op, Value: decimal.NewFromFloat(value), Position: DefaultPosition}
}

func cartSubject() *Subject {
	return &Subject{
		Cart: &CartFacts{
			PriceGross: decimal.NewFromInt(120),
			Lines: []Line{
				{ProductID: uuid.New(), Amount: 2, Weight: 1.5, Width: 10, Height: 5, Length: 20},
				{ProductID: uuid.New(), Amount: 1, Weight: 3, Width: 30, Height: 2, Length: 15},
			},
		},
	}
}

type stubMethods struct {
	valid map[uuid.UUID]bool
	calls int
}

func (m *stubMethods) IsMethodValid(_ context.Context, _ OwnerType, id uuid.UUID, _ *Subject) bool {
	m.calls++
	return m.valid[id]
}

type stubExpressions struct {
	result bool
	err    error
	data   map[string]any
}

func (e *stubExpressions) Evaluate(_ context.Context, _ string, data map[string]any) (bool, error) {
	e.data = data
	return e.result, e.err
}

func TestNewCriterion(t *testing.T) {
	owner := uuid.New()

	t.Run("creates criterion with default position", func(t *testing.T) {
		c, err := NewCriterion(OwnerShippingMethod, owner, KindWeight, OperatorLessThan)
		require.NoError(t, err)
		assert.Equal(t, DefaultPosition, c.Position)
		assert.Equal(t, owner, c.OwnerID)
		assert.True(t, c.Value.IsZero())
		assert.NotEqual(t, uuid.Nil, c.ID)
	})

	t.Run("rejects operator outside the kind group", func(t *testing.T) {
		_, err := NewCriterion(OwnerShippingMethod, owner, KindCountry, OperatorLessThan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed")
	})

	t.Run("rejects unknown kind and owner", func(t *testing.T) {
		_, err := NewCriterion(OwnerShippingMethod, owner, Kind("colour"), OperatorEqual)
		require.Error(t, err)
		_, err = NewCriterion(OwnerType("basket"), owner, KindWeight, OperatorEqual)
		require.Error(t, err)
		_, err = NewCriterion(OwnerDiscount, uuid.Nil, KindWeight, OperatorEqual)
		require.Error(t, err)
	})
}

func TestEvaluate_Numbers(t *testing.T) {
	ctx := context.Background()
	s := cartSubject()

	tests := []struct {
		name string
		c    *Criterion
		want bool
	}{
		{"cart price greater than", number(KindCartPrice, OperatorGreaterThan, 100), true},
		{"cart price equal", number(KindCartPrice, OperatorEqual, 120), true},
		{"cart price less than", number(KindCartPrice, OperatorLessThan, 120), false},
		{"weight sums amounts", number(KindWeight, OperatorEqual, 6), true},
		{"height sums amounts", number(KindHeight, OperatorEqual, 12), true},
		{"width takes maximum", number(KindWidth, OperatorEqual, 30), true},
		{"length takes maximum", number(KindLength, OperatorGreaterThanEqual, 20), true},
		{"length strictly greater", number(KindLength, OperatorGreaterThan, 20), false},
		// 2*30 + 2*(5+2) + 20
		{"combined length and girth", number(KindCombinedLengthAndGirth, OperatorEqual, 94), true},
		{"distance defaults to zero", number(KindDistance, OperatorLessThanEqual, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(ctx, tt.c, s, OwnerShippingMethod))
		})
	}
}

func TestEvaluate_ProductTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	s := cartSubject().ForProduct(&ProductFacts{
		Price:  decimal.NewFromInt(10),
		Weight: 2,
		Width:  3,
		Height: 4,
		Length: 5,
	})

	assert.True(t, Evaluate(ctx, number(KindCartPrice, OperatorEqual, 10), s, OwnerShippingMethod))
	assert.True(t, Evaluate(ctx, number(KindWeight, OperatorEqual, 2), s, OwnerShippingMethod))
	assert.True(t, Evaluate(ctx, number(KindCombinedLengthAndGirth, OperatorEqual, 19), s, OwnerShippingMethod))
}

func TestEvaluate_EmptyContext(t *testing.T) {
	ctx := context.Background()
	s := &Subject{}

	assert.True(t, Evaluate(ctx, number(KindCartPrice, OperatorEqual, 0), s, OwnerDiscount))
	assert.True(t, Evaluate(ctx, number(KindLength, OperatorEqual, 0), s, OwnerDiscount))
	assert.True(t, Evaluate(ctx, number(KindWeight, OperatorLessThan, 1), s, OwnerDiscount))
}

func TestEvaluate_Country(t *testing.T) {
	ctx := context.Background()
	s := &Subject{Country: "de"}

	in := &Criterion{Kind: KindCountry, Operator: OperatorIsSelected, Values: []string{"DE", "AT"}}
	notIn := &Criterion{Kind: KindCountry, Operator: OperatorIsNotSelected, Values: []string{"DE", "AT"}}

	assert.True(t, Evaluate(ctx, in, s, OwnerShippingMethod))
	assert.False(t, Evaluate(ctx, notIn, s, OwnerShippingMethod))

	s.Country = "US"
	assert.False(t, Evaluate(ctx, in, s, OwnerShippingMethod))
	assert.True(t, Evaluate(ctx, notIn, s, OwnerShippingMethod))
}

func TestEvaluate_User(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	c := &Criterion{Kind: KindUser, Operator: OperatorIsSelected, Values: []string{user.String()}}

	assert.True(t, Evaluate(ctx, c, &Subject{UserID: user}, OwnerDiscount))
	assert.False(t, Evaluate(ctx, c, &Subject{UserID: uuid.New()}, OwnerDiscount))
	assert.False(t, Evaluate(ctx, c, &Subject{}, OwnerDiscount))
}

func TestEvaluate_MethodSelection(t *testing.T) {
	ctx := context.Background()
	shipping := uuid.New()
	s := &Subject{ShippingMethodID: shipping}

	c := &Criterion{Kind: KindShippingMethod, Operator: OperatorIsSelected, Values: []string{shipping.String()}}

	t.Run("selected method matches", func(t *testing.T) {
		assert.True(t, Evaluate(ctx, c, s, OwnerPaymentMethod))
	})

	t.Run("false when owner is a method of the same kind", func(t *testing.T) {
		assert.False(t, Evaluate(ctx, c, s, OwnerShippingMethod))
		notSelected := &Criterion{Kind: KindShippingMethod, Operator: OperatorIsNotSelected, Values: []string{uuid.NewString()}}
		assert.False(t, Evaluate(ctx, notSelected, s, OwnerShippingMethod))
	})

	t.Run("not selected", func(t *testing.T) {
		notSelected := &Criterion{Kind: KindShippingMethod, Operator: OperatorIsNotSelected, Values: []string{uuid.NewString()}}
		assert.True(t, Evaluate(ctx, notSelected, s, OwnerPaymentMethod))
	})
}

func TestEvaluate_MethodValidity(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	methods := &stubMethods{valid: map[uuid.UUID]bool{a: true, b: false}}
	s := &Subject{Methods: methods}

	allValid := &Criterion{Kind: KindPaymentMethod, Operator: OperatorIsValid, Values: []string{a.String(), b.String()}}
	onlyA := &Criterion{Kind: KindPaymentMethod, Operator: OperatorIsValid, Values: []string{a.String()}}
	noneValid := &Criterion{Kind: KindPaymentMethod, Operator: OperatorIsNotValid, Values: []string{b.String()}}

	assert.False(t, Evaluate(ctx, allValid, s, OwnerShippingMethod))
	assert.True(t, Evaluate(ctx, onlyA, s, OwnerShippingMethod))
	assert.True(t, Evaluate(ctx, noneValid, s, OwnerShippingMethod))

	t.Run("nesting limit stops recursion", func(t *testing.T) {
		deep := s
		for i := 0; i < maxMethodDepth; i++ {
			var ok bool
			deep, ok = deep.Nested()
			require.True(t, ok)
		}
		assert.False(t, Evaluate(ctx, onlyA, deep, OwnerShippingMethod))
	})

	t.Run("no validator", func(t *testing.T) {
		assert.False(t, Evaluate(ctx, onlyA, &Subject{}, OwnerShippingMethod))
	})
}

func TestEvaluate_Expression(t *testing.T) {
	ctx := context.Background()
	exprs := &stubExpressions{result: true}
	s := cartSubject()
	s.Country = "DE"
	s.Expressions = exprs

	c := &Criterion{Kind: KindExpression, Operator: OperatorIsValid, Expression: `{"==":[{"var":"country"},"DE"]}`}
	assert.True(t, Evaluate(ctx, c, s, OwnerDiscount))
	assert.Equal(t, "DE", exprs.data["country"])
	cart, ok := exprs.data["cart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), cart["amount_of_items"])

	exprs.err = errors.New("bad rule")
	assert.False(t, Evaluate(ctx, c, s, OwnerDiscount))

	assert.False(t, Evaluate(ctx, &Criterion{Kind: KindExpression, Operator: OperatorIsValid}, s, OwnerDiscount))
}

func TestEvaluate_InvalidCombinations(t *testing.T) {
	ctx := context.Background()
	s := cartSubject()

	assert.False(t, Evaluate(ctx, &Criterion{Kind: Kind("unknown"), Operator: OperatorEqual}, s, OwnerDiscount))
	assert.False(t, Evaluate(ctx, number(KindWeight, OperatorIsSelected, 0), s, OwnerDiscount))
	assert.False(t, Evaluate(ctx, nil, s, OwnerDiscount))
}

func TestIsValid(t *testing.T) {
	ctx := context.Background()
	s := cartSubject()

	assert.True(t, IsValid(ctx, nil, s, OwnerShippingMethod))
	assert.True(t, IsValid(ctx, []Criterion{
		*number(KindCartPrice, OperatorGreaterThan, 50),
		*number(KindWeight, OperatorLessThan, 10),
	}, s, OwnerShippingMethod))
	assert.False(t, IsValid(ctx, []Criterion{
		*number(KindCartPrice, OperatorGreaterThan, 50),
		*number(KindWeight, OperatorGreaterThan, 10),
	}, s, OwnerShippingMethod))
}

func TestSortByPosition(t *testing.T) {
	list := []Criterion{
		{Kind: KindWeight, Position: 20},
		{Kind: KindCountry, Position: 10},
		{Kind: KindHeight, Position: 20},
	}
	SortByPosition(list)
	assert.Equal(t, []Kind{KindCountry, KindWeight, KindHeight}, []Kind{list[0].Kind, list[1].Kind, list[2].Kind})
}

type method struct {
	id uuid.UUID
}

func (m method) CriteriaOwner() (OwnerType, uuid.UUID) {
	return OwnerShippingMethod, m.id
}

type mapSource struct {
	lists map[uuid.UUID][]Criterion
	err   error
}

func (m mapSource) CriteriaFor(_ context.Context, _ OwnerType, id uuid.UUID) ([]Criterion, error) {
	return m.lists[id], m.err
}

func TestFirstValid(t *testing.T) {
	ctx := context.Background()
	heavy, light, free := method{uuid.New()}, method{uuid.New()}, method{uuid.New()}
	src := mapSource{lists: map[uuid.UUID][]Criterion{
		heavy.id: {*number(KindWeight, OperatorGreaterThan, 100)},
		light.id: {*number(KindWeight, OperatorLessThan, 100)},
	}}
	checker := NewChecker(src)

	got, ok, err := FirstValid(ctx, checker, []method{heavy, light, free}, cartSubject())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, light, got)

	valid, err := ValidOnly(ctx, checker, []method{heavy, light, free}, cartSubject())
	require.NoError(t, err)
	assert.Equal(t, []method{light, free}, valid)

	_, ok, err = FirstValid(ctx, checker, []method{heavy}, cartSubject())
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = FirstValid(ctx, NewChecker(mapSource{err: errors.New("db down")}), []method{heavy}, cartSubject())
	require.Error(t, err)
}

type countingObserver struct {
	valid, invalid int
}

func (o *countingObserver) CriteriaChecked(_ OwnerType, valid bool) {
	if valid {
		o.valid++
	} else {
		o.invalid++
	}
}

func TestChecker_WithObserver(t *testing.T) {
	ctx := context.Background()
	heavy, light := method{uuid.New()}, method{uuid.New()}
	src := mapSource{lists: map[uuid.UUID][]Criterion{
		heavy.id: {*number(KindWeight, OperatorGreaterThan, 100)},
	}}
	obs := &countingObserver{}
	checker := NewChecker(src).WithObserver(obs)

	_, err := ValidOnly(ctx, checker, []method{heavy, light}, cartSubject())
	require.NoError(t, err)
	assert.Equal(t, 1, obs.valid)
	assert.Equal(t, 1, obs.invalid)
}
