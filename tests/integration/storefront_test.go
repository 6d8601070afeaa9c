//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfs/storefront/tests/testutil"
)

type productView struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	ForSale bool      `json:"for_sale"`
}

type method struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type summary struct {
	Country string `json:"country"`
	Lines   []any  `json:"lines"`
	Totals  struct {
		PriceGross    decimal.Decimal `json:"price_gross"`
		AmountOfItems float64         `json:"amount_of_items"`
	} `json:"totals"`
	Shipping *struct {
		Name string `json:"name"`
	} `json:"shipping"`
	PriceGross decimal.Decimal `json:"price_gross"`
}

func TestStorefront_Seeded(t *testing.T) {
	shop := NewShop(t)

	assert.Equal(t, 3, shop.Seeded.Products)
	assert.Equal(t, 2, shop.Seeded.Variants)
	assert.Equal(t, 2, shop.Seeded.ShippingMethods)
	assert.Equal(t, 2, shop.Seeded.PaymentMethods)
	assert.NoError(t, shop.Infra.DB.Ping(context.Background()))
}

func TestStorefront_CategoryProducts(t *testing.T) {
	shop := NewShop(t)
	client := testutil.NewClient(shop.Engine, "browse-1")

	var products []productView
	client.Expect(t, http.StatusOK, http.MethodGet, API("/categories/%s/products", "shirts"), nil, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "basic-shirt", products[0].Slug)

	resp := client.Expect(t, http.StatusNotFound, http.MethodGet, API("/categories/%s/products", "unknown"), nil, nil)
	assert.False(t, resp.Success)
}

func TestStorefront_CheckoutFlow(t *testing.T) {
	shop := NewShop(t)
	client := testutil.NewClient(shop.Engine, "checkout-1")

	var product productView
	client.Expect(t, http.StatusOK, http.MethodGet, API("/products/%s", "basic-shirt"), nil, &product)
	require.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, "Basic Shirt", product.Name)

	var sum summary
	client.Expect(t, http.StatusOK, http.MethodPost, API("/cart/items"),
		map[string]any{"product_id": product.ID.String(), "amount": 2}, &sum)
	assert.Equal(t, float64(2), sum.Totals.AmountOfItems)
	assert.True(t, decimal.RequireFromString("39.98").Equal(sum.Totals.PriceGross), "cart total %s", sum.Totals.PriceGross)

	var shippingMethods []method
	client.Expect(t, http.StatusOK, http.MethodGet, API("/shipping/methods"), nil, &shippingMethods)
	require.Len(t, shippingMethods, 1)
	assert.Equal(t, "Standard", shippingMethods[0].Name)

	var paymentMethods []method
	client.Expect(t, http.StatusOK, http.MethodGet, API("/payment/methods"), nil, &paymentMethods)
	assert.Len(t, paymentMethods, 2)

	client.Expect(t, http.StatusOK, http.MethodGet, API("/cart"), nil, &sum)
	assert.Equal(t, "DE", sum.Country)
	if assert.NotNil(t, sum.Shipping) {
		assert.Equal(t, "Standard", sum.Shipping.Name)
	}
	assert.True(t, sum.PriceGross.GreaterThan(sum.Totals.PriceGross))

	var placed struct {
		Order *struct {
			Number string
		} `json:"order"`
		Payment struct {
			Accepted bool `json:"accepted"`
		} `json:"payment"`
	}
	client.Expect(t, http.StatusCreated, http.MethodPost, API("/cart/checkout"),
		map[string]any{"message": "Please ring twice"}, &placed)
	require.NotNil(t, placed.Order)
	assert.NotEmpty(t, placed.Order.Number)
	assert.True(t, placed.Payment.Accepted)

	// the cart is gone after the order was placed
	resp := client.Expect(t, http.StatusUnprocessableEntity, http.MethodPost, API("/cart/checkout"), map[string]any{}, nil)
	assert.False(t, resp.Success)
}

func TestStorefront_CountryRestrictsPayment(t *testing.T) {
	shop := NewShop(t)
	client := testutil.NewClient(shop.Engine, "country-1")

	var product productView
	client.Expect(t, http.StatusOK, http.MethodGet, API("/products/%s", "go-in-practice"), nil, &product)
	client.Expect(t, http.StatusOK, http.MethodPost, API("/cart/items"),
		map[string]any{"product_id": product.ID.String(), "amount": 1}, nil)

	client.Expect(t, http.StatusOK, http.MethodPut, API("/shipping/country"),
		map[string]any{"country_code": "AT"}, nil)

	var methods []method
	client.Expect(t, http.StatusOK, http.MethodGet, API("/payment/methods"), nil, &methods)
	require.Len(t, methods, 1)
	assert.Equal(t, "Prepayment", methods[0].Name)
}

func TestStorefront_SessionsAreSeparate(t *testing.T) {
	shop := NewShop(t)
	first := testutil.NewClient(shop.Engine, "visitor-a")
	second := testutil.NewClient(shop.Engine, "visitor-b")

	var product productView
	first.Expect(t, http.StatusOK, http.MethodGet, API("/products/%s", "basic-shirt"), nil, &product)
	first.Expect(t, http.StatusOK, http.MethodPost, API("/cart/items"),
		map[string]any{"product_id": product.ID.String(), "amount": 1}, nil)

	var sum summary
	second.Expect(t, http.StatusOK, http.MethodGet, API("/cart"), nil, &sum)
	assert.Empty(t, sum.Lines)
	assert.True(t, sum.Totals.PriceGross.IsZero())
}
