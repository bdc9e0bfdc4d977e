package decision

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/metrics"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"go.uber.org/zap"
)

// Engine produces one decision per step: the fast rule set, optionally blended with an
// external provider, then checked against the confidence floor and the risk limits.
// Decide never fails; provider problems fall back to the fast decision.
type Engine struct {
	provider DecisionProvider
	cache    Cache
	weights  FusionWeights
	log      *logger.Logger
	metrics  *metrics.Collector
}

type EngineOption func(*Engine)

func WithProvider(p DecisionProvider) EngineOption {
	return func(e *Engine) {
		e.provider = p
	}
}

func WithCache(c Cache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

func WithFusionWeights(w FusionWeights) EngineOption {
	return func(e *Engine) {
		e.weights = w
	}
}

func WithLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

func WithMetrics(m *metrics.Collector) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		provider: nil,
		cache:    nil,
		weights:  DefaultFusionWeights(),
		log:      logger.NewNopLogger(),
		metrics:  nil,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cache == nil {
		e.cache = NewCacheV1(DefaultCacheSize, DefaultCacheTTL)
	}

	return e
}

// Decide returns the decision for the step described by dctx.
func (e *Engine) Decide(ctx context.Context, dctx types.DecisionContext, cfg types.StrategyConfig) types.Decision {
	if dctx.CircuitBreakerActive {
		return types.Flat(1, "daily loss limit reached", types.DecisionSourceBreaker)
	}

	fast := FastDecision(dctx, cfg)
	final := fast

	if e.shouldConsult(fast, dctx, cfg) {
		if external, ok := e.external(ctx, dctx, cfg); ok {
			final = Fuse(fast, external, e.weights)
		}
	}

	return e.enforce(final, dctx, cfg)
}

func (e *Engine) shouldConsult(fast types.Decision, dctx types.DecisionContext, cfg types.StrategyConfig) bool {
	if e.provider == nil || len(dctx.RecentCandles) == 0 {
		return false
	}

	switch cfg.AI.EffectiveMode() {
	case types.AIModeOff:
		return false
	case types.AIModeAssist:
		if fast.Confidence >= cfg.AI.EffectiveConfidenceThreshold() {
			return false
		}
	case types.AIModeFull:
	}

	if cfg.AI.MinTradesForAI > 0 && dctx.Performance.TotalTrades < cfg.AI.MinTradesForAI {
		e.metrics.ObserveProviderCall("skipped")

		return false
	}

	return true
}

// external returns the provider's decision for the step, served from the cache when possible.
func (e *Engine) external(ctx context.Context, dctx types.DecisionContext, cfg types.StrategyConfig) (types.Decision, bool) {
	key := CacheKey{
		StrategyID: cfg.ID,
		Symbol:     dctx.Symbol,
		CandleTime: dctx.LastCandle().Timestamp,
		Mode:       cfg.AI.EffectiveMode(),
		Position:   positionKey(dctx.OpenPositions),
	}

	if cached, ok := e.cache.Get(key); ok {
		e.metrics.ObserveCache(true)

		return cached, true
	}

	e.metrics.ObserveCache(false)

	decision, err := e.callProvider(ctx, dctx, cfg)
	if err != nil {
		result := "error"
		if errors.HasCode(err, errors.ErrCodeProviderTimeout) {
			result = "timeout"
		}

		e.metrics.ObserveProviderCall(result)
		e.log.Warn("Decision provider failed, using fast decision",
			zap.String("provider", e.provider.Name()),
			zap.String("symbol", dctx.Symbol),
			zap.Error(err),
		)

		return types.Decision{}, false
	}

	e.metrics.ObserveProviderCall("ok")
	e.cache.Set(key, decision)

	return decision, true
}

func (e *Engine) callProvider(ctx context.Context, dctx types.DecisionContext, cfg types.StrategyConfig) (types.Decision, error) {
	timeout := time.Duration(cfg.AI.EffectiveTimeoutMs()) * time.Millisecond

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		decision types.Decision
		err      error
	}

	ch := make(chan result, 1)

	go func() {
		d, err := e.provider.Decide(cctx, dctx, cfg)
		ch <- result{decision: d, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return types.Decision{}, errors.NewProviderFailedError(e.provider.Name(), r.err)
		}

		return normalizeExternal(r.decision, e.provider.Name())
	case <-cctx.Done():
		return types.Decision{}, errors.Wrapf(errors.ErrCodeProviderTimeout, cctx.Err(),
			"provider %s did not answer within %s", e.provider.Name(), timeout)
	}
}

// normalizeExternal rejects unknown actions and clamps numeric fields into range.
func normalizeExternal(d types.Decision, provider string) (types.Decision, error) {
	if !d.Action.Valid() {
		return types.Decision{}, errors.Newf(errors.ErrCodeInvalidDecision, "provider %s returned unknown action %q", provider, d.Action)
	}

	if math.IsNaN(d.Confidence) || math.IsNaN(d.TargetPositionSizePct) {
		return types.Decision{}, errors.Newf(errors.ErrCodeInvalidDecision, "provider %s returned NaN", provider)
	}

	d.Confidence = clamp(d.Confidence, 0, 1)
	d.TargetPositionSizePct = math.Max(d.TargetPositionSizePct, 0)
	d.Source = types.DecisionSourceExternal

	if d.Action == types.ActionFlat {
		d.TargetPositionSizePct = 0
	}

	return d, nil
}

// enforce applies the confidence floor and clamps size to the position cap.
func (e *Engine) enforce(d types.Decision, dctx types.DecisionContext, cfg types.StrategyConfig) types.Decision {
	d.Confidence = clamp(d.Confidence, 0, 1)

	if d.Action == types.ActionFlat {
		d.TargetPositionSizePct = 0

		return d
	}

	if minConf := cfg.EffectiveMinConfidence(); d.Confidence < minConf {
		return types.Flat(d.Confidence,
			appendNote(d.Notes, fmt.Sprintf("confidence %.2f below minimum %.2f", d.Confidence, minConf)), d.Source)
	}

	limit := dctx.RiskLimits.MaxPositionPct
	if d.TargetPositionSizePct > limit {
		d.Notes = appendNote(d.Notes, fmt.Sprintf("size %.2f%% clamped to %.2f%%", d.TargetPositionSizePct, limit))
		d.TargetPositionSizePct = limit
	}

	if d.TargetPositionSizePct <= 0 {
		return types.Flat(d.Confidence, appendNote(d.Notes, "no position capacity"), d.Source)
	}

	return d
}

func positionKey(positions []types.Position) string {
	if len(positions) == 0 {
		return "flat"
	}

	return string(positions[0].Side)
}
