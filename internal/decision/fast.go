package decision

import (
	"fmt"
	"math"
	"strings"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

const (
	minPresentSignals       = 3
	insufficientConfidence  = 0.2
	actionStrengthThreshold = 3.0
	baseConfidence          = 0.4
	confidencePerStrength   = 0.05
	maxFastConfidence       = 0.85
	minTradesForWinRateAdj  = 10
)

// signalScore is the breakdown behind one fast decision.
type signalScore struct {
	strength float64
	present  int
	notes    []string
}

// FastDecision is the rule-based decision from the indicator snapshot and recent performance.
// It is deterministic and makes no external calls.
func FastDecision(dctx types.DecisionContext, cfg types.StrategyConfig) types.Decision {
	if len(dctx.RecentCandles) == 0 {
		return types.Flat(insufficientConfidence, "no candles", types.DecisionSourceFast)
	}

	score := scoreSignals(dctx.Indicators, dctx.LastCandle().Close)

	if score.present < minPresentSignals {
		return types.Flat(insufficientConfidence,
			fmt.Sprintf("only %d of 6 signals available", score.present), types.DecisionSourceFast)
	}

	action := types.ActionFlat

	switch {
	case score.strength >= actionStrengthThreshold:
		action = types.ActionLong
	case score.strength <= -actionStrengthThreshold:
		action = types.ActionShort
	}

	confidence := clamp(baseConfidence+confidencePerStrength*math.Abs(score.strength), baseConfidence, maxFastConfidence)

	if perf := dctx.Performance; perf.TotalTrades >= minTradesForWinRateAdj {
		switch {
		case perf.WinRate > 0.55:
			confidence *= 1.15
		case perf.WinRate < 0.45:
			confidence *= 0.85
		}

		confidence = math.Min(confidence, 1)
	}

	size := 0.0
	if action != types.ActionFlat {
		size = confidence * cfg.RiskLimits.MaxPositionPct
	}

	return types.Decision{
		Action:                action,
		Confidence:            confidence,
		TargetPositionSizePct: size,
		Notes:                 strings.Join(score.notes, "; "),
		Source:                types.DecisionSourceFast,
		Strength:              score.strength,
	}
}

func scoreSignals(ind types.Indicators, price float64) signalScore {
	var s signalScore

	trend := 0.0

	if ind.EMAFast.IsSome() && ind.EMASlow.IsSome() && ind.EMASlow.Unwrap() != 0 {
		sep := (ind.EMAFast.Unwrap() - ind.EMASlow.Unwrap()) / ind.EMASlow.Unwrap() * 100

		switch {
		case sep > 0.5:
			trend = 2
		case sep > 0:
			trend = 1
		case sep < -0.5:
			trend = -2
		case sep < 0:
			trend = -1
		}

		s.add(trend, fmt.Sprintf("trend %.2f%%", sep))
	}

	if ind.RSI.IsSome() {
		rsi := ind.RSI.Unwrap()
		v := 0.0

		switch {
		case rsi < 30:
			v = 2
		case rsi > 70:
			v = -2
		case rsi >= 50 && trend > 0:
			v = 1
		case rsi <= 50 && trend < 0:
			v = -1
		}

		s.add(v, fmt.Sprintf("rsi %.1f", rsi))
	}

	if ind.MACD.IsSome() {
		m := ind.MACD.Unwrap()
		v := 0.0

		switch {
		case m.Histogram > 0:
			v = 1
			if m.MACD > 0 {
				v++
			}
		case m.Histogram < 0:
			v = -1
			if m.MACD < 0 {
				v--
			}
		default:
			v = sign(m.MACD)
		}

		s.add(v, fmt.Sprintf("macd hist %.4f", m.Histogram))
	}

	if ind.Bollinger.IsSome() {
		v := 0.0

		if p := ind.Bollinger.Unwrap().PercentB(price); p.IsSome() {
			switch {
			case p.Unwrap() < 0.1:
				v = 1
			case p.Unwrap() > 0.9:
				v = -1
			}
		}

		s.add(v, "bollinger")
	}

	if ind.Momentum.IsSome() {
		mom := ind.Momentum.Unwrap()
		v := 0.0

		switch {
		case mom > 0.5:
			v = 1
		case mom < -0.5:
			v = -1
		}

		s.add(v, fmt.Sprintf("momentum %.2f%%", mom))
	}

	if ind.ADX.IsSome() {
		adx := ind.ADX.Unwrap()
		s.present++

		switch {
		case adx >= 25:
			s.strength *= 1.5
		case adx < 20:
			s.strength *= 0.75
		}

		s.notes = append(s.notes, fmt.Sprintf("adx %.1f", adx))
	}

	return s
}

func (s *signalScore) add(v float64, note string) {
	s.strength += v
	s.present++
	s.notes = append(s.notes, note)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
