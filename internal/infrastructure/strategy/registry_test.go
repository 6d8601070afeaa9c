package strategy

import (
	"context"
	"sync"
	"testing"

	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock calculator for testing
type mockCalculator struct {
	pricing.GrossCalculator
	name string
}

func (c mockCalculator) Name() string { return c.name }

// Mock processor for testing
type mockProcessor struct {
	name string
}

func (p *mockProcessor) Name() string { return p.name }

func (p *mockProcessor) CreateOrderTime() payment.CreateOrderTime { return payment.OrderAccepted }

func (p *mockProcessor) Process(context.Context, payment.Request) (payment.Result, error) {
	return payment.Result{Accepted: true}, nil
}

func (p *mockProcessor) PayLink(*order.Order) string { return "" }

func TestStrategyRegistry_Calculators(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewStrategyRegistry()
		require.NoError(t, r.RegisterCalculator(mockCalculator{name: "special"}))

		c, err := r.GetCalculator("special")
		require.NoError(t, err)
		assert.Equal(t, "special", c.Name())
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		r := NewStrategyRegistry()
		require.NoError(t, r.RegisterCalculator(pricing.NetCalculator{}))

		err := r.RegisterCalculator(pricing.NetCalculator{})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("empty name without default fails", func(t *testing.T) {
		r := NewStrategyRegistry()
		_, err := r.GetCalculator("")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown name falls back to default", func(t *testing.T) {
		r := NewStrategyRegistry()
		require.NoError(t, r.RegisterCalculator(pricing.NetCalculator{}))
		require.NoError(t, r.SetDefaultCalculator(pricing.CalculatorNet))

		assert.Equal(t, pricing.CalculatorNet, r.GetCalculatorOrDefault("unknown").Name())
		assert.Equal(t, pricing.CalculatorNet, r.GetCalculatorOrDefault("").Name())
	})

	t.Run("no default falls back to gross", func(t *testing.T) {
		r := NewStrategyRegistry()
		assert.Equal(t, pricing.CalculatorGross, r.GetCalculatorOrDefault("net").Name())
	})

	t.Run("unregister clears default", func(t *testing.T) {
		r := NewStrategyRegistry()
		require.NoError(t, r.RegisterCalculator(pricing.NetCalculator{}))
		require.NoError(t, r.SetDefaultCalculator(pricing.CalculatorNet))

		require.NoError(t, r.UnregisterCalculator(pricing.CalculatorNet))
		assert.Empty(t, r.DefaultCalculator())
		assert.ErrorIs(t, r.UnregisterCalculator(pricing.CalculatorNet), shared.ErrNotFound)
	})

	t.Run("default must be registered", func(t *testing.T) {
		r := NewStrategyRegistry()
		assert.ErrorIs(t, r.SetDefaultCalculator("gross"), shared.ErrNotFound)
	})
}

func TestStrategyRegistry_Processors(t *testing.T) {
	r := NewStrategyRegistry()
	require.NoError(t, r.RegisterProcessor(&mockProcessor{name: "card"}))
	assert.ErrorIs(t, r.RegisterProcessor(&mockProcessor{name: "card"}), shared.ErrAlreadyExists)

	p, err := r.GetProcessor("card")
	require.NoError(t, err)
	assert.Equal(t, "card", p.Name())

	_, err = r.GetProcessor("")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, r.UnregisterProcessor("card"))
	assert.Empty(t, r.ListProcessors())
}

func TestStrategyRegistry_Concurrency(t *testing.T) {
	r, err := NewRegistryWithDefaults("")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.GetCalculatorOrDefault("net")
		}()
		go func() {
			defer wg.Done()
			_, _ = r.GetProcessor("invoice")
		}()
	}
	wg.Wait()
}

func TestNewRegistryWithDefaults(t *testing.T) {
	r, err := NewRegistryWithDefaults("net")
	require.NoError(t, err)

	assert.Equal(t, []string{"gross", "net"}, r.ListCalculators())
	assert.Equal(t, "net", r.DefaultCalculator())
	assert.Equal(t, []string{"cash_on_delivery", "invoice", "prepayment"}, r.ListProcessors())

	gross := r.GetCalculatorOrDefault("gross")
	assert.True(t, gross.Net(decimal.NewFromInt(119), decimal.NewFromInt(19), decimal.Zero).Equal(decimal.NewFromInt(100)))
}

func TestNewRegistryWithPayLinks(t *testing.T) {
	t.Run("registers pay links", func(t *testing.T) {
		r, err := NewRegistryWithPayLinks("", map[string]string{"paypal": "https://pay.example/{number}"})
		require.NoError(t, err)
		assert.Contains(t, r.ListProcessors(), "paypal")
		assert.Equal(t, "gross", r.DefaultCalculator())
	})

	t.Run("rejects broken template", func(t *testing.T) {
		_, err := NewRegistryWithPayLinks("", map[string]string{"paypal": "https://pay.example/"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown default calculator", func(t *testing.T) {
		_, err := NewRegistryWithDefaults("brutto")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
