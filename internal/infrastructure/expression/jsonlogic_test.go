package expression

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogicEvaluator_Evaluate(t *testing.T) {
	e := NewJSONLogicEvaluator(nil)
	ctx := context.Background()
	data := map[string]any{
		"country": "DE",
		"cart": map[string]any{
			"price_gross":     120.0,
			"amount_of_items": 3.0,
		},
	}

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{"comparison holds", `{">": [{"var": "cart.price_gross"}, 100]}`, true},
		{"comparison fails", `{"<": [{"var": "cart.amount_of_items"}, 2]}`, false},
		{"membership", `{"in": [{"var": "country"}, ["DE", "AT"]]}`, true},
		{"missing var is falsy", `{"var": "product.weight"}`, false},
		{"combined", `{"and": [{"==": [{"var": "country"}, "DE"]}, {">=": [{"var": "cart.amount_of_items"}, 3]}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(ctx, tt.expression, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONLogicEvaluator_InvalidRule(t *testing.T) {
	e := NewJSONLogicEvaluator(nil)

	_, err := e.Evaluate(context.Background(), `{"<": [1`, nil)
	assert.Error(t, err)
}

func TestJSONLogicEvaluator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSONLogicEvaluator(nil).Evaluate(ctx, `true`, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONLogicEvaluator_Validate(t *testing.T) {
	e := NewJSONLogicEvaluator(nil)

	assert.NoError(t, e.Validate(`{">": [{"var": "distance"}, 50]}`))
	assert.Error(t, e.Validate(`not json`))
}

func TestJSONLogicEvaluator_WithCriteria(t *testing.T) {
	c, err := criteria.NewCriterion(criteria.OwnerShippingMethod, uuid.New(), criteria.KindExpression, criteria.OperatorIsValid)
	require.NoError(t, err)
	c.Expression = `{">": [{"var": "cart.price_gross"}, 50]}`

	subject := &criteria.Subject{
		Cart:        &criteria.CartFacts{PriceGross: decimal.NewFromInt(80)},
		Expressions: NewJSONLogicEvaluator(nil),
	}
	assert.True(t, criteria.IsValid(context.Background(), []criteria.Criterion{*c}, subject, criteria.OwnerShippingMethod))

	subject.Cart.PriceGross = decimal.NewFromInt(20)
	assert.False(t, criteria.IsValid(context.Background(), []criteria.Criterion{*c}, subject, criteria.OwnerShippingMethod))
}
