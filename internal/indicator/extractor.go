package indicator

import (
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Extractor turns a candle window into an indicator snapshot.
// It is stateless between calls and safe for concurrent use.
type Extractor struct {
	registry    IndicatorRegistry
	parallelism int
}

type ExtractorOption func(*Extractor)

// WithParallelism computes up to n indicators concurrently. n <= 1 is sequential.
func WithParallelism(n int) ExtractorOption {
	return func(e *Extractor) {
		e.parallelism = n
	}
}

// WithRegistry replaces the default registry.
func WithRegistry(registry IndicatorRegistry) ExtractorOption {
	return func(e *Extractor) {
		e.registry = registry
	}
}

// NewExtractor builds an extractor over the default indicators configured with periods.
func NewExtractor(periods types.IndicatorPeriods, opts ...ExtractorOption) (*Extractor, error) {
	e := &Extractor{
		registry:    nil,
		parallelism: 1,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		registry, err := NewDefaultRegistry(periods)
		if err != nil {
			return nil, err
		}

		e.registry = registry
	}

	return e, nil
}

// Extract computes every registered indicator for candles.
// An empty window is an InsufficientDataError; short windows leave the affected indicators None.
func (e *Extractor) Extract(candles []types.Candle) (types.Indicators, error) {
	var result types.Indicators

	if len(candles) == 0 {
		return result, errors.NewInsufficientDataError(1, 0, "", "indicator extraction needs at least one candle")
	}

	names := e.registry.ListIndicators()
	indicators := make([]Indicator, 0, len(names))

	for _, name := range names {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			return result, err
		}

		indicators = append(indicators, ind)
	}

	slots := make([]types.Indicators, len(indicators))

	if e.parallelism <= 1 {
		for i, ind := range indicators {
			slots[i] = ind.Compute(candles)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.parallelism)

		for i, ind := range indicators {
			g.Go(func() error {
				slots[i] = ind.Compute(candles)

				return nil
			})
		}

		_ = g.Wait()
	}

	for _, slot := range slots {
		result.Merge(slot)
	}

	return result, nil
}

// MinCandles is the window length at which every registered indicator is present.
func (e *Extractor) MinCandles() int {
	longest := 1

	for _, name := range e.registry.ListIndicators() {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			continue
		}

		longest = max(longest, ind.MinCandles())
	}

	return longest
}
