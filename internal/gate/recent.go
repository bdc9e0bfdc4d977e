package gate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// CheckRecent judges the strategy's closed trades of the last RecentLookbackDays days.
// Fewer than MinRecentTrades closed trades is a failed check, not an error.
func (g *Gate) CheckRecent(ctx context.Context, cfg types.StrategyConfig) (types.ProfitabilityCheck, error) {
	if g.history == nil {
		return types.ProfitabilityCheck{}, errors.New(errors.ErrCodeMissingParameter, "recent check needs a trade history")
	}

	if cfg.ID == "" {
		return types.ProfitabilityCheck{}, errors.New(errors.ErrCodeInvalidConfiguration, "strategy id is required")
	}

	now := g.now().UTC()
	since := now.AddDate(0, 0, -g.config.RecentLookbackDays)

	trades, err := g.history.RecentTrades(ctx, cfg.ID, since)
	if err != nil {
		return types.ProfitabilityCheck{}, errors.Wrap(errors.ErrCodeHistoryFailed, "failed to read recent trades", err)
	}

	closed := types.ClosedTrades(trades)
	perf := types.ComputePerformance(g.config.RecentEquity, closed)

	check := types.ProfitabilityCheck{
		ID:          uuid.New().String(),
		StrategyID:  cfg.ID,
		Kind:        types.CheckKindRecent,
		Sharpe:      perf.Sharpe,
		AvgReturn:   perf.RealizedPnL / g.config.RecentEquity * 100,
		WinRate:     perf.WinRate,
		MaxDrawdown: perf.MaxDrawdown,
		Details:     types.CheckDetails{SampleSize: len(closed)},
		CheckedAt:   now,
	}

	if len(closed) < g.config.MinRecentTrades {
		check.Message = fmt.Sprintf("insufficient sample: %d closed trades in %d days, need %d",
			len(closed), g.config.RecentLookbackDays, g.config.MinRecentTrades)
	} else {
		criteria, passed := Evaluate(Aggregate{
			Sharpe:      check.Sharpe,
			AvgReturn:   check.AvgReturn,
			WinRate:     check.WinRate,
			MaxDrawdown: check.MaxDrawdown,
		}, cfg.Thresholds.Resolve())

		check.Details.Criteria = criteria
		check.Passed = passed
		check.Message = fmt.Sprintf("%s (%d trades)", describe(criteria, passed), len(closed))
	}

	if err := g.record(ctx, cfg, check); err != nil {
		return check, err
	}

	return check, nil
}
