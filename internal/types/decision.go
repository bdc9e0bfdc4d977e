package types

import "time"

type Action string

const (
	ActionLong  Action = "long"
	ActionShort Action = "short"
	ActionFlat  Action = "flat"
)

func (a Action) Valid() bool {
	return a == ActionLong || a == ActionShort || a == ActionFlat
}

// Direction is +1 for long, -1 for short and 0 for flat.
func (a Action) Direction() float64 {
	switch a {
	case ActionLong:
		return 1
	case ActionShort:
		return -1
	default:
		return 0
	}
}

// DecisionSource records which evaluator produced the final decision.
type DecisionSource string

const (
	DecisionSourceFast     DecisionSource = "fast"
	DecisionSourceExternal DecisionSource = "external"
	DecisionSourceFused    DecisionSource = "fused"
	DecisionSourceBreaker  DecisionSource = "breaker"
	DecisionSourceCache    DecisionSource = "cache"
)

// Decision is a trading intent for one step.
type Decision struct {
	Action Action `json:"action"`
	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`
	// TargetPositionSizePct is the share of equity to commit, never above the risk cap.
	TargetPositionSizePct float64        `json:"targetPositionSizePct"`
	Notes                 string         `json:"notes,omitempty"`
	Source                DecisionSource `json:"source,omitempty"`
	// Strength is the signed score behind a fast decision.
	Strength float64 `json:"strength,omitempty"`
}

// Flat returns a flat decision with the given confidence and note.
func Flat(confidence float64, notes string, source DecisionSource) Decision {
	return Decision{
		Action:                ActionFlat,
		Confidence:            confidence,
		TargetPositionSizePct: 0,
		Notes:                 notes,
		Source:                source,
		Strength:              0,
	}
}

// DecisionContext is everything the decision engine may look at for one step.
type DecisionContext struct {
	Symbol        string             `json:"symbol"`
	Timeframe     Timeframe          `json:"timeframe"`
	Now           time.Time          `json:"now"`
	RecentCandles []Candle           `json:"recentCandles"`
	Indicators    Indicators         `json:"indicators"`
	OpenPositions []Position         `json:"openPositions"`
	Performance   PerformanceMetrics `json:"performance"`
	RiskLimits    RiskLimits         `json:"riskLimits"`
	// CircuitBreakerActive forces a flat decision.
	CircuitBreakerActive bool `json:"circuitBreakerActive"`
}

// LastCandle returns the newest candle of the window. The window must not be empty.
func (d DecisionContext) LastCandle() Candle {
	return d.RecentCandles[len(d.RecentCandles)-1]
}
