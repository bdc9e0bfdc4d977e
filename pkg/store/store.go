package store

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-gate/internal/types"
)

// CheckStore persists profitability checks.
type CheckStore interface {
	// StoreCheck records check under strategyID. The check's ID is assigned when empty.
	StoreCheck(ctx context.Context, strategyID string, check types.ProfitabilityCheck) error
	// GetHistory returns the checks of the last days days, oldest first.
	GetHistory(ctx context.Context, strategyID string, days int) ([]types.ProfitabilityCheck, error)
}

// TradeHistory supplies the real or paper trades a strategy has made.
type TradeHistory interface {
	// RecentTrades returns the strategy's trades since the given time, oldest first.
	RecentTrades(ctx context.Context, strategyID string, since time.Time) ([]types.Trade, error)
}
