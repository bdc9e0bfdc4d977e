package mocks

//go:generate mockgen -destination=./mock_decision_provider.go -package=mocks github.com/rxtech-lab/argo-gate/internal/decision DecisionProvider
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-gate/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/argo-gate/internal/indicator IndicatorRegistry
//go:generate mockgen -destination=./mock_engine.go -package=mocks github.com/rxtech-lab/argo-gate/internal/backtest/engine Engine
//go:generate mockgen -destination=./mock_candle_supplier.go -package=mocks github.com/rxtech-lab/argo-gate/pkg/marketdata/provider CandleSupplier
//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/rxtech-lab/argo-gate/pkg/store CheckStore,TradeHistory
