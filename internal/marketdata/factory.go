package marketdata

import (
	"context"
	"fmt"
	"time"

	"simtrader/internal/config"
	"simtrader/internal/domain"
	"simtrader/internal/store"
)

var _ Source = (*StoreSource)(nil)

// StoreSource serves bars out of a persistent bar store.
type StoreSource struct {
	store      store.BarStore
	start, end time.Time
}

// NewStoreSource creates a Source reading [start, end] from the store.
func NewStoreSource(s store.BarStore, start, end time.Time) *StoreSource {
	return &StoreSource{store: s, start: start, end: end}
}

// Name returns "parquet".
func (s *StoreSource) Name() string { return "parquet" }

// Bars reads the configured range for symbol from the store.
func (s *StoreSource) Bars(ctx context.Context, symbol string) ([]domain.Bar, error) {
	bars, err := s.store.ReadBars(ctx, symbol, s.start, s.end)
	if err != nil {
		return nil, err
	}
	return validated(s.Name(), bars)
}

// FromConfig builds the Source the data config names. bars may be nil
// unless the source is "parquet".
func FromConfig(dataCfg config.DataConfig, alpacaCfg config.AlpacaConfig, bars store.BarStore) (Source, error) {
	switch dataCfg.Source {
	case "synthetic":
		start, err := parseDate(dataCfg.StartDate)
		if err != nil {
			return nil, err
		}
		return NewGenerator(GeneratorOpts{
			Bars:       dataCfg.Bars,
			StartPrice: dataCfg.StartPrice,
			Volatility: dataCfg.Volatility,
			Start:      start,
			Seed:       dataCfg.Seed,
		}), nil

	case "csv":
		return NewCSVSource(dataCfg.CSVPath), nil

	case "parquet":
		if bars == nil {
			return nil, fmt.Errorf("marketdata: parquet source needs a bar store")
		}
		start, end, err := parseRange(dataCfg.StartDate, dataCfg.EndDate)
		if err != nil {
			return nil, err
		}
		return NewStoreSource(bars, start, end), nil

	case "alpaca":
		start, end, err := parseRange(dataCfg.StartDate, dataCfg.EndDate)
		if err != nil {
			return nil, err
		}
		return NewAlpacaSource(alpacaCfg.APIKey, alpacaCfg.APISecret, alpacaCfg.DataURL,
			start, end, alpacaCfg.RateLimitPerMin, alpacaCfg.RateLimitBurst), nil

	default:
		return nil, fmt.Errorf("marketdata: unknown source %q", dataCfg.Source)
	}
}

// parseDate parses a YYYY-MM-DD config date; empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("marketdata: invalid date %q: %w", s, err)
	}
	return t, nil
}

// parseRange parses a start/end pair, widening empty bounds.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}

	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.IsZero() {
		end = time.Now().UTC()
	} else {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("marketdata: end date %s before start %s", endStr, startStr)
	}
	return start, end, nil
}
