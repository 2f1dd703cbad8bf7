package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"simtrader/internal/domain"
)

// Compile-time interface check.
var _ Source = (*CSVSource)(nil)

// CSVSource loads bars from a CSV file with the header
// timestamp,open,high,low,close,volume. Timestamps are RFC 3339 or
// YYYY-MM-DD.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSVSource reading from the given path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Name returns "csv".
func (s *CSVSource) Name() string { return "csv" }

// Bars reads and validates the full series from the CSV file. The symbol is
// stamped onto every bar; the file itself carries no symbol column.
func (s *CSVSource) Bars(_ context.Context, symbol string) ([]domain.Bar, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	// Header row.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", s.Path, err)
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s line %d: %w", s.Path, line, err)
		}

		bar, err := parseBarRecord(symbol, record)
		if err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", s.Path, line, err)
		}
		bars = append(bars, bar)
	}

	return validated("csv", bars)
}

func parseBarRecord(symbol string, record []string) (domain.Bar, error) {
	ts, err := parseTimestamp(record[0])
	if err != nil {
		return domain.Bar{}, err
	}

	fields := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s: %w", name, err)
		}
		fields[i] = v
	}

	volume, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("volume: %w", err)
	}

	return domain.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    volume,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}
