package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
)

// StrategyRegistry manages the price calculators and payment processors
// that products, methods and the shop reference by name
type StrategyRegistry struct {
	mu                sync.RWMutex
	calculators       map[string]pricing.Calculator
	processors        map[string]payment.Processor
	defaultCalculator string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		calculators: make(map[string]pricing.Calculator),
		processors:  make(map[string]payment.Processor),
	}
}

// RegisterCalculator registers a price calculator
func (r *StrategyRegistry) RegisterCalculator(c pricing.Calculator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.calculators[name]; exists {
		return fmt.Errorf("%w: price calculator '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.calculators[name] = c
	return nil
}

// GetCalculator returns a calculator by name, or the default if name is empty
func (r *StrategyRegistry) GetCalculator(name string) (pricing.Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultCalculator
		if name == "" {
			return nil, fmt.Errorf("%w: no default price calculator set", shared.ErrNotFound)
		}
	}

	c, exists := r.calculators[name]
	if !exists {
		return nil, fmt.Errorf("%w: price calculator '%s' not found", shared.ErrNotFound, name)
	}
	return c, nil
}

// GetCalculatorOrDefault returns a calculator by name, or the default if not
// found. Without any default the gross calculator is returned.
func (r *StrategyRegistry) GetCalculatorOrDefault(name string) pricing.Calculator {
	c, err := r.GetCalculator(name)
	if err != nil {
		c, err = r.GetCalculator("")
	}
	if err != nil {
		return pricing.GrossCalculator{}
	}
	return c
}

// ListCalculators returns all registered calculator names
func (r *StrategyRegistry) ListCalculators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.calculators))
	for name := range r.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterCalculator removes a calculator
func (r *StrategyRegistry) UnregisterCalculator(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.calculators[name]; !exists {
		return fmt.Errorf("%w: price calculator '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.calculators, name)

	if r.defaultCalculator == name {
		r.defaultCalculator = ""
	}
	return nil
}

// SetDefaultCalculator sets the calculator used for an empty or unknown name
func (r *StrategyRegistry) SetDefaultCalculator(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.calculators[name]; !exists {
		return fmt.Errorf("%w: price calculator '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultCalculator = name
	return nil
}

// DefaultCalculator returns the default calculator name
func (r *StrategyRegistry) DefaultCalculator() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultCalculator
}

// RegisterProcessor registers a payment processor
func (r *StrategyRegistry) RegisterProcessor(p payment.Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.processors[name]; exists {
		return fmt.Errorf("%w: payment processor '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.processors[name] = p
	return nil
}

// GetProcessor returns a processor by name. Processors have no default: a
// payment method without processor places the order directly.
func (r *StrategyRegistry) GetProcessor(name string) (payment.Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.processors[name]
	if !exists {
		return nil, fmt.Errorf("%w: payment processor '%s' not found", shared.ErrNotFound, name)
	}
	return p, nil
}

// ListProcessors returns all registered processor names
func (r *StrategyRegistry) ListProcessors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterProcessor removes a processor
func (r *StrategyRegistry) UnregisterProcessor(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processors[name]; !exists {
		return fmt.Errorf("%w: payment processor '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.processors, name)
	return nil
}

var _ payment.ProcessorRegistry = (*StrategyRegistry)(nil)
