package discount

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noCriteria struct{}

func (noCriteria) CriteriaFor(context.Context, criteria.OwnerType, uuid.UUID) ([]criteria.Criterion, error) {
	return nil, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newDiscount(t *testing.T, value string, typ Type) *Discount {
	t.Helper()
	d, err := New("Spring sale", dec(value), typ)
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	_, err := New("", dec("1"), TypeAbsolute)
	require.Error(t, err)
	_, err = New("x", dec("-1"), TypeAbsolute)
	require.Error(t, err)
	_, err = New("x", dec("1"), Type(9))
	require.Error(t, err)
}

func TestDiscount_Prices(t *testing.T) {
	shirt, shoe := uuid.New(), uuid.New()
	cart := Basket{
		Cart:       true,
		Lines:      []Line{{ProductID: shirt, PriceGross: dec("50")}, {ProductID: shoe, PriceGross: dec("100")}},
		PriceGross: dec("150"),
		Tax:        dec("23.95"),
	}
	single := Basket{Product: &Line{ProductID: shoe, PriceGross: dec("100")}}

	t.Run("absolute", func(t *testing.T) {
		d := newDiscount(t, "10", TypeAbsolute)
		assert.Equal(t, "10", d.PriceGross(cart).String())
		assert.True(t, d.TaxAmount(cart).IsZero())
		assert.Equal(t, "10", d.PriceNet(cart).String())
	})

	t.Run("percentage of cart", func(t *testing.T) {
		d := newDiscount(t, "10", TypePercentage)
		assert.Equal(t, "15", d.PriceGross(cart).String())
		assert.Equal(t, "2.395", d.TaxAmount(cart).String())
		assert.Equal(t, "10", d.PriceGross(single).String())
		assert.True(t, d.TaxAmount(single).IsZero())
		assert.True(t, d.PriceGross(Basket{}).IsZero())
	})

	t.Run("own tax", func(t *testing.T) {
		d := newDiscount(t, "11.90", TypeAbsolute)
		d.Tax, _ = pricing.NewTax(dec("19"))
		assert.Equal(t, "1.90", d.TaxAmount(cart).StringFixed(2))
		assert.Equal(t, "10.00", d.PriceNet(cart).StringFixed(2))
	})

	t.Run("restricted to products", func(t *testing.T) {
		d := newDiscount(t, "10", TypePercentage)
		d.RestrictTo(shoe)
		assert.Equal(t, "10", d.PriceGross(cart).String())
		assert.Equal(t, "10", d.PriceGross(single).String())

		abs := newDiscount(t, "3", TypeAbsolute)
		abs.RestrictTo(shirt, shoe)
		assert.Equal(t, "6", abs.PriceGross(cart).String())
		assert.Equal(t, "3", abs.PriceGross(single).String())

		other := Basket{Product: &Line{ProductID: uuid.New(), PriceGross: dec("5")}}
		assert.True(t, abs.PriceGross(other).IsZero())
	})
}

func TestDiscount_IsValid(t *testing.T) {
	ctx := context.Background()
	checker := criteria.NewChecker(noCriteria{})
	s := &criteria.Subject{}
	product := uuid.New()
	cart := Basket{Cart: true, Lines: []Line{{ProductID: product, PriceGross: dec("1")}}}

	d := newDiscount(t, "1", TypeAbsolute)
	ok, err := d.IsValid(ctx, checker, cart, s)
	require.NoError(t, err)
	assert.True(t, ok)

	d.RestrictTo(uuid.New())
	ok, err = d.IsValid(ctx, checker, cart, s)
	require.NoError(t, err)
	assert.False(t, ok)

	d.RestrictTo(product)
	ok, err = d.IsValid(ctx, checker, Basket{}, s)
	require.NoError(t, err)
	assert.False(t, ok)

	d.Active = false
	ok, err = d.IsValid(ctx, checker, cart, s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCombine(t *testing.T) {
	a := *newDiscount(t, "1", TypeAbsolute)
	b := *newDiscount(t, "2", TypeAbsolute)
	exclusive := *newDiscount(t, "3", TypeAbsolute)
	exclusive.SumsUp = false

	assert.Len(t, Combine([]Discount{a, b}, false), 2)
	assert.Len(t, Combine([]Discount{a, exclusive, b}, false), 2)
	assert.Empty(t, Combine([]Discount{exclusive}, true))

	only := Combine([]Discount{exclusive, a, b}, false)
	require.Len(t, only, 1)
	assert.Equal(t, exclusive.ID, only[0].ID)
}
