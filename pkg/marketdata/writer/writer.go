package writer

import (
	"github.com/rxtech-lab/argo-gate/internal/types"
)

// CandleWriter persists candle series, e.g. to a parquet file.
type CandleWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle of symbol.
	Write(symbol string, candle types.Candle) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
