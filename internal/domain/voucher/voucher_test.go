package voucher

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNew(t *testing.T) {
	_, err := New("", uuid.New(), KindAbsolute, dec("1"))
	require.Error(t, err)
	_, err = New("A", uuid.New(), Kind(5), dec("1"))
	require.Error(t, err)
	_, err = New("A", uuid.New(), KindAbsolute, dec("-1"))
	require.Error(t, err)
}

func TestVoucher_Prices(t *testing.T) {
	cart := CartAmounts{PriceGross: dec("119"), PriceNet: dec("100"), Tax: dec("19")}

	abs, err := New("ABS", uuid.New(), KindAbsolute, dec("11.90"))
	require.NoError(t, err)
	assert.Equal(t, "11.90", abs.PriceGross(cart).StringFixed(2))
	assert.True(t, abs.TaxAmount(cart).IsZero())

	abs.Tax, _ = pricing.NewTax(dec("19"))
	assert.Equal(t, "1.90", abs.TaxAmount(cart).StringFixed(2))
	assert.Equal(t, "10.00", abs.PriceNet(cart).StringFixed(2))

	pct, err := New("PCT", uuid.New(), KindPercentage, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, "11.90", pct.PriceGross(cart).StringFixed(2))
	assert.Equal(t, "10.00", pct.PriceNet(cart).StringFixed(2))
	assert.Equal(t, "1.90", pct.TaxAmount(cart).StringFixed(2))
}

func TestVoucher_IsEffective(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	v, err := New("X", uuid.New(), KindAbsolute, dec("5"))
	require.NoError(t, err)
	assert.True(t, v.IsEffective(now))

	start := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, v.SetPeriod(&start, &end))
	assert.True(t, v.IsEffective(now))
	assert.False(t, v.IsEffective(now.AddDate(0, 0, 1)))
	assert.False(t, v.IsEffective(now.AddDate(0, 0, -1)))

	before := start.AddDate(0, 0, -1)
	require.Error(t, v.SetPeriod(&start, &before))

	v.Active = false
	assert.False(t, v.IsEffective(now))
	v.Active = true

	require.NoError(t, v.MarkAsUsed(now))
	assert.False(t, v.IsEffective(now))
	require.NotNil(t, v.UsedAt)
	assert.ErrorIs(t, v.MarkAsUsed(now), shared.ErrVoucherNotUsable)
}

func TestOptions_NewNumber(t *testing.T) {
	n, err := DefaultOptions().NewNumber()
	require.NoError(t, err)
	assert.Len(t, n, 5)
	assert.Equal(t, strings.ToUpper(n), n)

	opts := Options{Prefix: "XM-", Suffix: "-24", Length: 8, Letters: "AB"}
	n, err = opts.NewNumber()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n, "XM-"))
	assert.True(t, strings.HasSuffix(n, "-24"))
	assert.Len(t, n, 14)
	assert.Empty(t, strings.Trim(n[3:11], "AB"))

	_, err = Options{Length: 3}.NewNumber()
	require.Error(t, err)
}
