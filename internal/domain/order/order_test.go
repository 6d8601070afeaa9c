package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("1001", nil, "sess")
	require.NoError(t, err)
	return o
}

func TestState(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.False(t, State(42).IsValid())
	assert.True(t, StateCanceled.IsTerminal())
	assert.False(t, StatePaid.IsTerminal())
}

func TestOrder_Items(t *testing.T) {
	o := newOrder(t)
	assert.Equal(t, StateSubmitted, o.State)

	productID := uuid.New()
	item, err := o.AddItem(productID, "SKU-1", "Shirt", 2, decimal.NewFromInt(10), decimal.RequireFromString("11.90"), decimal.RequireFromString("1.90"))
	require.NoError(t, err)
	assert.Equal(t, "23.8", item.PriceGross().String())

	_, err = o.AddItem(productID, "SKU-1", "Shirt", 0, decimal.Zero, decimal.Zero, decimal.Zero)
	require.Error(t, err)

	require.NoError(t, o.RemoveItem(item.ID))
	assert.ErrorIs(t, o.RemoveItem(item.ID), shared.ErrNotFound)

	events := o.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeOrderItemSaved, events[0].EventType())
	assert.Equal(t, EventTypeOrderItemDeleted, events[1].EventType())
	deleted := events[1].(*OrderItemEvent)
	assert.Equal(t, productID, *deleted.ProductID)
}

func TestOrder_SetState(t *testing.T) {
	o := newOrder(t)
	modified := o.StateModified

	require.NoError(t, o.SetState(StatePaid))
	assert.Equal(t, StatePaid, o.State)
	assert.False(t, o.StateModified.Before(modified))

	require.NoError(t, o.SetState(StateClosed))
	require.Error(t, o.SetState(StateSent))
	require.NoError(t, o.SetState(StateClosed))
	require.Error(t, newOrder(t).SetState(State(99)))
}

func TestOrder_Costs(t *testing.T) {
	o := newOrder(t)
	sm := uuid.New()
	o.SetShipping(&sm, Costs{Price: decimal.NewFromInt(5), Tax: decimal.RequireFromString("0.8")})
	o.SetVoucher("ABCDE", Costs{Price: decimal.NewFromInt(2), Tax: decimal.Zero})
	o.SetTotals(decimal.NewFromInt(30), decimal.NewFromInt(4))

	assert.Equal(t, sm, *o.ShippingMethodID)
	assert.Equal(t, "ABCDE", o.VoucherNumber)
	assert.True(t, o.Price.Equal(decimal.NewFromInt(30)))
}

func TestOrder_AddDiscount(t *testing.T) {
	o := newOrder(t)

	item := o.AddDiscount("D-1", "Summer", decimal.NewFromInt(10), decimal.RequireFromString("11.90"), decimal.RequireFromString("1.90"))

	assert.Nil(t, item.ProductID)
	assert.Equal(t, 1.0, item.ProductAmount)
	assert.True(t, item.PriceGross().Equal(decimal.RequireFromString("-11.90")))
	assert.True(t, item.ProductTax.Equal(decimal.RequireFromString("-1.90")))
	assert.Empty(t, o.GetDomainEvents())
}
