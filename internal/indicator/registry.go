package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	// ListIndicators returns the registered names in registration order.
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	order      []types.IndicatorType
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		order:      nil,
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry registers every built-in indicator configured with periods.
// The registration order is the extraction order.
func NewDefaultRegistry(periods types.IndicatorPeriods) (IndicatorRegistry, error) {
	p := periods.WithDefaults()
	registry := NewIndicatorRegistry()

	configs := []struct {
		indicator Indicator
		params    []any
	}{
		{NewRSI(), []any{p.RSI}},
		{NewFastEMA(), []any{p.EMAFast}},
		{NewSlowEMA(), []any{p.EMASlow}},
		{NewMACD(), []any{p.EMAFast, p.EMASlow, p.MACDSignal}},
		{NewBollingerBands(), []any{p.Bollinger, 2.0}},
		{NewATR(), []any{p.ATR}},
		{NewADX(), []any{p.ADX}},
		{NewStochastic(), []any{p.StochasticK, p.StochasticD}},
		{NewWilliamsR(), []any{p.WilliamsR}},
		{NewCCI(), []any{p.CCI}},
		{NewMomentum(), []any{p.Momentum}},
		{NewSupportResistance(), []any{p.SupportResistance}},
		{NewTrendStrength(), []any{p.TrendStrength}},
		{NewVolatility(), []any{p.Volatility}},
	}

	for _, c := range configs {
		if err := c.indicator.Config(c.params...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidPeriod, err, "failed to configure %s", c.indicator.Name())
		}

		if err := registry.RegisterIndicator(c.indicator); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator
	r.order = append(r.order, name)

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetIndicator: indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns a list of all registered indicator names.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, len(r.order))
	copy(names, r.order)

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}
