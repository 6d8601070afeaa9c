package strategy

import (
	"sort"

	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/infrastructure/strategy/payment"
)

// NewRegistryWithDefaults creates a registry with the gross and net
// calculators and the offline payment processors. defaultCalculator is the
// shop's calculator; it falls back to gross when empty.
func NewRegistryWithDefaults(defaultCalculator string) (*StrategyRegistry, error) {
	return NewRegistryWithPayLinks(defaultCalculator, nil)
}

// NewRegistryWithPayLinks also registers a hosted pay link processor for
// every name -> URL template pair
func NewRegistryWithPayLinks(defaultCalculator string, payLinks map[string]string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	// Register price calculators
	if err := r.RegisterCalculator(pricing.GrossCalculator{}); err != nil {
		return nil, err
	}
	if err := r.RegisterCalculator(pricing.NetCalculator{}); err != nil {
		return nil, err
	}

	// Register payment processors
	offline := []*payment.OfflineProcessor{
		payment.NewOfflineProcessor(payment.ProcessorPrepayment, "Please transfer the amount within 14 days."),
		payment.NewOfflineProcessor(payment.ProcessorInvoice, "You will receive an invoice with your delivery."),
		payment.NewOfflineProcessor(payment.ProcessorCashOnDelivery, "Please pay the carrier on delivery."),
	}
	for _, p := range offline {
		if err := r.RegisterProcessor(p); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(payLinks))
	for name := range payLinks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := payment.NewPayLinkProcessor(name, payLinks[name])
		if err != nil {
			return nil, err
		}
		if err := r.RegisterProcessor(p); err != nil {
			return nil, err
		}
	}

	// Set default
	if defaultCalculator == "" {
		defaultCalculator = pricing.CalculatorGross
	}
	if err := r.SetDefaultCalculator(defaultCalculator); err != nil {
		return nil, err
	}

	return r, nil
}
