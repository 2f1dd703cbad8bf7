// Package marketdata provides the data-loading collaborators for the
// backtest engine: a seeded synthetic series generator, a CSV loader, and an
// Alpaca historical fetcher. Every source returns a finite bar series with
// strictly increasing timestamps.
package marketdata

import (
	"context"
	"fmt"

	"simtrader/internal/domain"
)

// Source produces an ordered, finite bar series for one symbol.
type Source interface {
	// Name returns the source identifier (e.g. "synthetic", "csv", "alpaca").
	Name() string

	// Bars returns the full bar series for the symbol, validated against the
	// strictly-increasing-timestamp contract.
	Bars(ctx context.Context, symbol string) ([]domain.Bar, error)
}

// validated enforces the input contract on a freshly loaded series. Sources
// call it before handing bars to anyone else, so ordering violations surface
// at the boundary rather than inside the engine.
func validated(source string, bars []domain.Bar) ([]domain.Bar, error) {
	if err := domain.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("%s source: %w", source, err)
	}
	return bars, nil
}
