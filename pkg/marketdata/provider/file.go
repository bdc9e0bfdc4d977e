package provider

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
)

// FileSupplier reads candles from a parquet or csv file with the columns
// time, symbol, open, high, low, close, volume. The path may be a glob.
type FileSupplier struct {
	db   *sql.DB
	sq   squirrel.StatementBuilderType
	path string
}

func NewFileSupplier(path string) (*FileSupplier, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "data path is required")
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	return &FileSupplier{
		db:   db,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		path: path,
	}, nil
}

func (f *FileSupplier) Name() string {
	return string(SupplierFile)
}

// source returns the DuckDB table function reading the file.
func (f *FileSupplier) source() string {
	escaped := strings.ReplaceAll(f.path, "'", "''")

	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".csv":
		return fmt.Sprintf("read_csv_auto('%s')", escaped)
	default:
		return fmt.Sprintf("read_parquet('%s')", escaped)
	}
}

func (f *FileSupplier) GetHistoricalCandles(ctx context.Context, req CandleRequest) ([]types.Candle, error) {
	query, args, err := f.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From(f.source()).
		Where(squirrel.Eq{"symbol": req.Symbol}).
		Where(squirrel.GtOrEq{"time": req.From.UTC()}).
		Where(squirrel.LtOrEq{"time": req.To.UTC()}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candle query: %w", err)
	}

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read candles from %s", f.path)
	}
	defer rows.Close()

	var candles []types.Candle

	for rows.Next() {
		var (
			ts time.Time
			c  types.Candle
		)

		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan candle", err)
		}

		c.Timestamp = ts.UTC()
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating candles", err)
	}

	return candles, nil
}

func (f *FileSupplier) Close() error {
	return f.db.Close()
}
