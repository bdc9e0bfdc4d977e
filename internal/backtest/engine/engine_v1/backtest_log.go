package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"go.uber.org/zap"
)

// DecisionLogEntry is one step's decision as recorded by BacktestLog.
type DecisionLogEntry struct {
	Timestamp             time.Time
	Symbol                string
	Price                 float64
	Action                types.Action
	Confidence            float64
	TargetPositionSizePct float64
	Source                types.DecisionSource
	Strength              float64
	Notes                 string
}

// BacktestLog records every decision of a run in a DuckDB database
// so it can be exported next to the run's result.
type BacktestLog struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewBacktestLog creates a new instance of BacktestLog.
func NewBacktestLog(logger *logger.Logger) (*BacktestLog, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	decisionLog := &BacktestLog{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := decisionLog.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return decisionLog, nil
}

// Log records a decision entry.
func (l *BacktestLog) Log(entry DecisionLogEntry) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("backtest log or database is nil")
	}

	var nextID int

	err := l.db.QueryRow("SELECT nextval('decision_id_seq')").Scan(&nextID)
	if err != nil {
		return fmt.Errorf("failed to get next ID from sequence: %w", err)
	}

	insertQuery := l.sq.
		Insert("decisions").
		Columns("id", "timestamp", "symbol", "price", "action", "confidence", "target_size_pct", "source", "strength", "notes").
		Values(nextID, entry.Timestamp, entry.Symbol, entry.Price, string(entry.Action), entry.Confidence,
			entry.TargetPositionSizePct, string(entry.Source), entry.Strength, entry.Notes).
		RunWith(l.db)

	if _, err = insertQuery.Exec(); err != nil {
		return fmt.Errorf("failed to insert decision entry: %w", err)
	}

	return nil
}

// GetEntries returns all recorded decisions in insertion order.
func (l *BacktestLog) GetEntries() ([]DecisionLogEntry, error) {
	if l == nil || l.db == nil {
		return nil, fmt.Errorf("backtest log or database is nil")
	}

	rows, err := l.sq.
		Select("timestamp", "symbol", "price", "action", "confidence", "target_size_pct", "source", "strength", "notes").
		From("decisions").
		OrderBy("id ASC").
		RunWith(l.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionLogEntry

	for rows.Next() {
		var entry DecisionLogEntry

		var action, source string

		if err := rows.Scan(&entry.Timestamp, &entry.Symbol, &entry.Price, &action, &entry.Confidence,
			&entry.TargetPositionSizePct, &source, &entry.Strength, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan decision entry: %w", err)
		}

		entry.Action = types.Action(action)
		entry.Source = types.DecisionSource(source)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded decisions per action.
func (l *BacktestLog) Count() (map[types.Action]int, error) {
	rows, err := l.sq.
		Select("action", "COUNT(*)").
		From("decisions").
		GroupBy("action").
		RunWith(l.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Action]int)

	for rows.Next() {
		var action string

		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("failed to scan decision count: %w", err)
		}

		counts[types.Action(action)] = n
	}

	return counts, rows.Err()
}

// Write saves the decisions to decisions.parquet in the specified directory.
func (l *BacktestLog) Write(path string) error {
	if l == nil || l.db == nil || l.logger == nil {
		return fmt.Errorf("backtest log, database, or logger is nil")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	decisionsPath := filepath.Join(path, "decisions.parquet")

	_, err := l.db.Exec(fmt.Sprintf(`COPY decisions TO '%s' (FORMAT PARQUET)`, decisionsPath))
	if err != nil {
		return fmt.Errorf("failed to export decisions to Parquet: %w", err)
	}

	l.logger.Debug("Exported decisions to Parquet file",
		zap.String("decisions", decisionsPath),
	)

	return nil
}

// Cleanup resets the database state.
func (l *BacktestLog) Cleanup() error {
	if l == nil || l.db == nil {
		return fmt.Errorf("backtest log or database is nil")
	}

	_, err := l.db.Exec(`
		DROP TABLE IF EXISTS decisions;
		DROP SEQUENCE IF EXISTS decision_id_seq;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup decisions table: %w", err)
	}

	return l.initialize()
}

// Close closes the database connection.
func (l *BacktestLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}

	return l.db.Close()
}

func (l *BacktestLog) initialize() error {
	if l == nil || l.db == nil {
		return fmt.Errorf("backtest log or database is nil")
	}

	_, err := l.db.Exec(`CREATE SEQUENCE IF NOT EXISTS decision_id_seq`)
	if err != nil {
		return fmt.Errorf("failed to create sequence: %w", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY,
			timestamp TIMESTAMP,
			symbol TEXT,
			price DOUBLE,
			action TEXT,
			confidence DOUBLE,
			target_size_pct DOUBLE,
			source TEXT,
			strength DOUBLE,
			notes TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create decisions table: %w", err)
	}

	return nil
}
