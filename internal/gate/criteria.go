package gate

import (
	"fmt"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

const (
	CriterionSharpe      = "sharpe"
	CriterionAvgReturn   = "avg_return"
	CriterionWinRate     = "win_rate"
	CriterionMaxDrawdown = "max_drawdown"
)

// Aggregate is the average of the metrics the gate judges.
type Aggregate struct {
	// Sharpe is None when no sample had a defined ratio.
	Sharpe      optional.Option[float64]
	AvgReturn   float64
	WinRate     float64
	MaxDrawdown float64
}

// Evaluate compares agg against every threshold. The gate passes only when all four hold.
// An undefined Sharpe fails its criterion.
func Evaluate(agg Aggregate, t types.ResolvedThresholds) ([]types.CriterionResult, bool) {
	sharpe := types.CriterionResult{
		Name:      CriterionSharpe,
		Value:     agg.Sharpe.TakeOr(0),
		Threshold: t.MinSharpe,
		Passed:    agg.Sharpe.IsSome() && agg.Sharpe.TakeOr(0) > t.MinSharpe,
		Defined:   agg.Sharpe.IsSome(),
	}

	criteria := []types.CriterionResult{
		sharpe,
		{
			Name:      CriterionAvgReturn,
			Value:     agg.AvgReturn,
			Threshold: t.MinAvgReturnPct,
			Passed:    agg.AvgReturn > t.MinAvgReturnPct,
			Defined:   true,
		},
		{
			Name:      CriterionWinRate,
			Value:     agg.WinRate,
			Threshold: t.MinWinRate,
			Passed:    agg.WinRate > t.MinWinRate,
			Defined:   true,
		},
		{
			Name:      CriterionMaxDrawdown,
			Value:     agg.MaxDrawdown,
			Threshold: t.MaxDrawdownPct,
			Passed:    agg.MaxDrawdown < t.MaxDrawdownPct,
			Defined:   true,
		},
	}

	passed := true
	for _, c := range criteria {
		passed = passed && c.Passed
	}

	return criteria, passed
}

// aggregate averages the successful trial results.
func aggregate(results []types.BacktestResult) Aggregate {
	var (
		agg       Aggregate
		sharpeSum float64
		sharpeN   int
	)

	if len(results) == 0 {
		return agg
	}

	for _, r := range results {
		agg.AvgReturn += r.TotalReturnPct
		agg.WinRate += r.Performance.WinRate
		agg.MaxDrawdown += r.MaxDrawdown

		if s := r.Performance.Sharpe; s.IsSome() {
			sharpeSum += s.Unwrap()
			sharpeN++
		}
	}

	n := float64(len(results))
	agg.AvgReturn /= n
	agg.WinRate /= n
	agg.MaxDrawdown /= n

	if sharpeN > 0 {
		agg.Sharpe = optional.Some(sharpeSum / float64(sharpeN))
	}

	return agg
}

// describe renders the verdict as one line.
func describe(criteria []types.CriterionResult, passed bool) string {
	parts := make([]string, 0, len(criteria))

	for _, c := range criteria {
		if passed || !c.Passed {
			parts = append(parts, describeCriterion(c))
		}
	}

	if passed {
		return "passed: " + strings.Join(parts, ", ")
	}

	return "failed: " + strings.Join(parts, ", ")
}

func describeCriterion(c types.CriterionResult) string {
	if !c.Defined {
		return fmt.Sprintf("%s undefined (need > %.2f)", c.Name, c.Threshold)
	}

	op := ">"
	if c.Name == CriterionMaxDrawdown {
		op = "<"
	}

	if c.Passed {
		return fmt.Sprintf("%s %.2f %s %.2f", c.Name, c.Value, op, c.Threshold)
	}

	return fmt.Sprintf("%s %.2f not %s %.2f", c.Name, c.Value, op, c.Threshold)
}
