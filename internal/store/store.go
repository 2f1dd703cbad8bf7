// Package store persists bar series and completed backtest runs. Bars live
// in Parquet files on disk; runs and their trade ledgers live in SQLite.
package store

import (
	"context"
	"time"

	"simtrader/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars, merged with any already stored.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the symbol within [start, end], ordered by
	// timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in the store.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Run is a completed backtest run as persisted. Trades is the full ledger in
// execution order.
type Run struct {
	ID            int64
	Symbol        string
	Strategy      string
	CreatedAt     time.Time
	InitialCash   float64
	FinalValue    float64
	TotalReturn   float64
	SharpeRatio   float64
	MaxDrawdown   float64
	ValueAtRisk   float64
	WinRate       float64
	TotalTrades   int
	Stopped       bool
	Failed        bool
	FailureReason string
	Trades        []domain.Trade
}

// RunStore persists and retrieves backtest runs.
type RunStore interface {
	// SaveRun inserts a run and its trades, returning the assigned run ID.
	SaveRun(ctx context.Context, run *Run) (int64, error)

	// GetRun retrieves a run, including its trade ledger, by ID.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns returns run summaries (no trade ledgers), most recent first,
	// up to limit. A non-positive limit returns all runs.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
