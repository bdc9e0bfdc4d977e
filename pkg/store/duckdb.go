package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS profitability_checks (
	id VARCHAR PRIMARY KEY,
	strategy_id VARCHAR NOT NULL,
	kind VARCHAR NOT NULL,
	passed BOOLEAN NOT NULL,
	sharpe DOUBLE,
	avg_return DOUBLE NOT NULL,
	win_rate DOUBLE NOT NULL,
	max_drawdown DOUBLE NOT NULL,
	message VARCHAR NOT NULL,
	details VARCHAR NOT NULL,
	checked_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS trades (
	id VARCHAR PRIMARY KEY,
	strategy_id VARCHAR NOT NULL,
	symbol VARCHAR NOT NULL,
	side VARCHAR NOT NULL,
	size DOUBLE NOT NULL,
	entry_price DOUBLE NOT NULL,
	exit_price DOUBLE,
	fees DOUBLE NOT NULL,
	slippage DOUBLE NOT NULL,
	pnl DOUBLE NOT NULL,
	pnl_pct DOUBLE NOT NULL,
	opened_at TIMESTAMP NOT NULL,
	closed_at TIMESTAMP NOT NULL,
	exit_reason VARCHAR NOT NULL
);`

// DuckDBStore keeps checks and trades in a DuckDB database.
// An empty path opens an in-memory database.
type DuckDBStore struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	now func() time.Time
}

var (
	_ CheckStore   = (*DuckDBStore)(nil)
	_ TradeHistory = (*DuckDBStore)(nil)
)

type DuckDBStoreOption func(*DuckDBStore)

// WithClock replaces the clock used for check timestamps and history windows.
func WithClock(now func() time.Time) DuckDBStoreOption {
	return func(s *DuckDBStore) {
		s.now = now
	}
}

func NewDuckDBStore(path string, opts ...DuckDBStoreOption) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, "failed to create store tables", err)
	}

	s := &DuckDBStore{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *DuckDBStore) StoreCheck(ctx context.Context, strategyID string, check types.ProfitabilityCheck) error {
	if strategyID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy id is required")
	}

	if check.ID == "" {
		check.ID = uuid.New().String()
	}

	if check.CheckedAt.IsZero() {
		check.CheckedAt = s.now()
	}

	details, err := json.Marshal(check.Details)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to encode check details", err)
	}

	var sharpe any
	if check.Sharpe.IsSome() {
		sharpe = check.Sharpe.Unwrap()
	}

	query, args, err := s.sq.
		Insert("profitability_checks").
		Columns("id", "strategy_id", "kind", "passed", "sharpe", "avg_return", "win_rate", "max_drawdown", "message", "details", "checked_at").
		Values(check.ID, strategyID, string(check.Kind), check.Passed, sharpe, check.AvgReturn, check.WinRate, check.MaxDrawdown, check.Message, string(details), check.CheckedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreFailed, err, "failed to store check %s", check.ID)
	}

	return nil
}

// GetHistory returns the checks stored in the last days days. A non-positive days returns all of them.
func (s *DuckDBStore) GetHistory(ctx context.Context, strategyID string, days int) ([]types.ProfitabilityCheck, error) {
	builder := s.sq.
		Select("id", "strategy_id", "kind", "passed", "sharpe", "avg_return", "win_rate", "max_drawdown", "message", "details", "checked_at").
		From("profitability_checks").
		Where(squirrel.Eq{"strategy_id": strategyID}).
		OrderBy("checked_at ASC")

	if days > 0 {
		since := s.now().AddDate(0, 0, -days).UTC()
		builder = builder.Where(squirrel.GtOrEq{"checked_at": since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query check history", err)
	}
	defer rows.Close()

	var checks []types.ProfitabilityCheck

	for rows.Next() {
		var (
			check   types.ProfitabilityCheck
			kind    string
			sharpe  sql.NullFloat64
			details string
		)

		if err := rows.Scan(&check.ID, &check.StrategyID, &kind, &check.Passed, &sharpe, &check.AvgReturn,
			&check.WinRate, &check.MaxDrawdown, &check.Message, &details, &check.CheckedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan check", err)
		}

		check.Kind = types.CheckKind(kind)
		check.CheckedAt = check.CheckedAt.UTC()

		if sharpe.Valid {
			check.Sharpe = optional.Some(sharpe.Float64)
		}

		if err := json.Unmarshal([]byte(details), &check.Details); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to decode details of check %s", check.ID)
		}

		checks = append(checks, check)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating checks", err)
	}

	return checks, nil
}

// RecordTrades appends closed trades to the strategy's trade history in one transaction.
func (s *DuckDBStore) RecordTrades(ctx context.Context, strategyID string, trades []types.Trade) error {
	if strategyID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range trades {
		var exitPrice any
		if t.ExitPrice.IsSome() {
			exitPrice = t.ExitPrice.Unwrap()
		}

		query, args, err := s.sq.
			Insert("trades").
			Columns("id", "strategy_id", "symbol", "side", "size", "entry_price", "exit_price", "fees", "slippage", "pnl", "pnl_pct", "opened_at", "closed_at", "exit_reason").
			Values(uuid.New().String(), strategyID, t.Symbol, string(t.Side), t.Size, t.EntryPrice, exitPrice, t.Fees, t.Slippage, t.PnL, t.PnLPct, t.OpenedAt.UTC(), t.Timestamp.UTC(), string(t.ExitReason)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeStoreFailed, "failed to insert trade", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to commit trades", err)
	}

	return nil
}

func (s *DuckDBStore) RecentTrades(ctx context.Context, strategyID string, since time.Time) ([]types.Trade, error) {
	query, args, err := s.sq.
		Select("symbol", "side", "size", "entry_price", "exit_price", "fees", "slippage", "pnl", "pnl_pct", "opened_at", "closed_at", "exit_reason").
		From("trades").
		Where(squirrel.Eq{"strategy_id": strategyID}).
		Where(squirrel.GtOrEq{"closed_at": since.UTC()}).
		OrderBy("closed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trades query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var (
			t          types.Trade
			side       string
			exitPrice  sql.NullFloat64
			exitReason string
		)

		if err := rows.Scan(&t.Symbol, &side, &t.Size, &t.EntryPrice, &exitPrice, &t.Fees, &t.Slippage,
			&t.PnL, &t.PnLPct, &t.OpenedAt, &t.Timestamp, &exitReason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		t.Side = types.PositionSide(side)
		t.ExitReason = types.ExitReason(exitReason)
		t.OpenedAt = t.OpenedAt.UTC()
		t.Timestamp = t.Timestamp.UTC()

		if exitPrice.Valid {
			t.ExitPrice = optional.Some(exitPrice.Float64)
		}

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating trades", err)
	}

	return trades, nil
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
