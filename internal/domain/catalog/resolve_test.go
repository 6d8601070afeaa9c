package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParentAndVariant(t *testing.T) (*Product, *Product) {
	t.Helper()
	parent, err := NewProduct("Shirt", "shirt", decimal.NewFromFloat(1.0))
	require.NoError(t, err)
	require.NoError(t, parent.SetSubType(SubTypeProductWithVariants))
	require.NoError(t, parent.SetForSale(false, decimal.NewFromFloat(0.5)))
	parent.SKU = "SH-1"
	parent.ShortDescription = "cotton"
	parent.Description = "A shirt"
	parent.MetaKeywords = "<name>, <short-description>"
	parent.Active = true
	taxID := uuid.New()
	parent.TaxID = &taxID

	variant, err := NewVariant(parent, "shirt-red")
	require.NoError(t, err)
	variant.Name = "%P red"
	variant.Price = decimal.NewFromFloat(2.0)
	variant.ForSalePrice = decimal.NewFromFloat(1.5)
	variant.Active = true
	return parent, variant
}

func TestResolve_VariantInheritsFromParent(t *testing.T) {
	parent, variant := newParentAndVariant(t)

	r := Resolve(variant, parent, nil)

	assert.Equal(t, "Shirt", r.Name)
	assert.Equal(t, "SH-1", r.SKU)
	assert.Equal(t, "A shirt", r.Description)
	assert.Equal(t, "Shirt", r.MetaTitle)
	assert.Equal(t, "Shirt, cotton", r.MetaKeywords)
	assert.Equal(t, parent.TaxID, r.TaxID)
	assert.True(t, r.Pricing.StandardPrice.Equal(decimal.NewFromFloat(1.0)))
	assert.False(t, r.Pricing.ForSale)
	assert.True(t, r.Pricing.Price().Equal(decimal.NewFromFloat(1.0)))
}

func TestResolve_VariantActiveFields(t *testing.T) {
	parent, variant := newParentAndVariant(t)
	variant.ActiveName = true
	variant.ActivePrice = true

	r := Resolve(variant, parent, nil)

	assert.Equal(t, "Shirt red", r.Name)
	assert.True(t, r.Pricing.Price().Equal(decimal.NewFromFloat(2.0)))
}

func TestResolve_VariantForSale(t *testing.T) {
	tests := []struct {
		name          string
		parentForSale bool
		activeForSale ActiveForSale
		activePrice   bool
		activeSalePrc bool
		wantStandard  float64
		wantPrice     float64
		wantForSale   bool
	}{
		{"inherits no sale", false, ActiveForSaleStandard, false, false, 1.0, 1.0, false},
		{"inherits sale with parent sale price", true, ActiveForSaleStandard, false, false, 1.0, 0.5, true},
		{"own sale price", true, ActiveForSaleStandard, false, true, 1.0, 1.5, true},
		{"own price and parent sale price", true, ActiveForSaleStandard, true, false, 2.0, 0.5, true},
		{"forced sale", false, ActiveForSaleYes, true, true, 2.0, 1.5, true},
		{"forced no sale", true, ActiveForSaleNo, true, true, 2.0, 2.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, variant := newParentAndVariant(t)
			parent.ForSale = tt.parentForSale
			variant.ActiveForSale = tt.activeForSale
			variant.ActivePrice = tt.activePrice
			variant.ActiveForSalePrice = tt.activeSalePrc

			r := Resolve(variant, parent, nil)

			assert.Equal(t, tt.wantForSale, r.Pricing.ForSale)
			assert.True(t, r.Pricing.StandardPrice.Equal(decimal.NewFromFloat(tt.wantStandard)), r.Pricing.StandardPrice.String())
			assert.True(t, r.Pricing.Price().Equal(decimal.NewFromFloat(tt.wantPrice)), r.Pricing.Price().String())
		})
	}
}

func TestResolve_ActiveAndDeliverable(t *testing.T) {
	parent, variant := newParentAndVariant(t)

	parent.Active = false
	assert.False(t, Resolve(variant, parent, nil).Active)

	parent.Active = true
	parent.Deliverable = false
	assert.False(t, Resolve(variant, parent, nil).Deliverable)

	parent.Deliverable = true
	variant.ManageStockAmount = true
	variant.StockAmount = 0
	assert.False(t, Resolve(variant, parent, nil).Deliverable)

	orderTime := uuid.New()
	variant.OrderTimeID = &orderTime
	assert.True(t, Resolve(variant, parent, nil).Deliverable)
}

func TestResolve_ProductWithVariantsUsesDefaultVariantPrice(t *testing.T) {
	parent, variant := newParentAndVariant(t)
	variant.ActivePrice = true

	second, err := NewVariant(parent, "shirt-blue")
	require.NoError(t, err)
	second.Active = true
	second.VariantPosition = 1
	second.ActivePrice = true
	second.Price = decimal.NewFromInt(7)

	t.Run("first active by position", func(t *testing.T) {
		r := Resolve(parent, nil, []Product{*variant, *second})
		require.NotNil(t, r.DefaultVariant)
		assert.Equal(t, second.ID, r.DefaultVariant.ID)
		assert.True(t, r.Pricing.Price().Equal(decimal.NewFromInt(7)))
		assert.Equal(t, "Shirt", r.Name)
	})

	t.Run("explicit default", func(t *testing.T) {
		require.NoError(t, parent.SetDefaultVariant(&variant.ID))
		r := Resolve(parent, nil, []Product{*variant, *second})
		require.NotNil(t, r.DefaultVariant)
		assert.Equal(t, variant.ID, r.DeliverySource().ID)
		assert.True(t, r.Pricing.Price().Equal(decimal.NewFromFloat(2.0)))
	})

	t.Run("no active variants", func(t *testing.T) {
		p, err := NewProduct("Empty", "empty", decimal.NewFromInt(3))
		require.NoError(t, err)
		require.NoError(t, p.SetSubType(SubTypeProductWithVariants))
		r := Resolve(p, nil, nil)
		assert.Nil(t, r.DefaultVariant)
		assert.True(t, r.Pricing.Price().Equal(decimal.NewFromInt(3)))
	})
}

func TestNewVariant_RequiresProductWithVariants(t *testing.T) {
	p, err := NewProduct("Plain", "plain", decimal.Zero)
	require.NoError(t, err)
	_, err = NewVariant(p, "plain-v")
	require.Error(t, err)
}

func TestProduct_EffectivePrice(t *testing.T) {
	p, err := NewProduct("Cup", "cup", decimal.NewFromInt(42))
	require.NoError(t, err)
	assert.True(t, p.EffectivePrice.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, "<name>", p.MetaTitle)
	assert.True(t, p.Deliverable)
	assert.False(t, p.Active)

	require.NoError(t, p.SetForSale(true, decimal.NewFromInt(30)))
	assert.True(t, p.EffectivePrice.Equal(decimal.NewFromInt(30)))

	require.NoError(t, p.SetForSale(false, decimal.NewFromInt(30)))
	assert.True(t, p.EffectivePrice.Equal(decimal.NewFromInt(42)))

	require.Error(t, p.SetPrice(decimal.NewFromInt(-1)))
	assert.NotEmpty(t, p.GetDomainEvents())
}

func TestProduct_DecreaseStockAmount(t *testing.T) {
	p, err := NewProduct("Cup", "cup", decimal.NewFromInt(1))
	require.NoError(t, err)

	p.DecreaseStockAmount(2)
	assert.Equal(t, float64(0), p.StockAmount)

	p.SetStock(true, 5)
	p.DecreaseStockAmount(2)
	assert.Equal(t, float64(3), p.StockAmount)
}

func TestAmountByPackages(t *testing.T) {
	assert.Equal(t, 3.0, AmountByPackages(3, 0))
	assert.Equal(t, 4.0, AmountByPackages(3, 2))
	assert.Equal(t, 1.5, AmountByPackages(1.2, 0.5))
}
