package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"simtrader/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	got := ps.barPath("aapl", 2024)
	want := filepath.Join("/data", "bars", "AAPL", "2024.parquet")
	if got != want {
		t.Errorf("barPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadBars(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	bars := []domain.Bar{
		{Symbol: "AAPL", Timestamp: day(2), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 150000},
		{Symbol: "AAPL", Timestamp: day(3), Open: 100.5, High: 102, Low: 100, Close: 101.7, Volume: 170000},
		{Symbol: "AAPL", Timestamp: day(4), Open: 101.7, High: 103, Low: 101, Close: 102.2, Volume: 160000},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatalf("WriteBars returned error: %v", err)
	}

	got, err := ps.ReadBars(ctx, "AAPL", day(2), day(3))
	if err != nil {
		t.Fatalf("ReadBars returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadBars returned %d bars, want 2", len(got))
	}
	if !got[0].Timestamp.Equal(day(2)) || !got[1].Timestamp.Equal(day(3)) {
		t.Errorf("ReadBars timestamps = %v, %v; want %v, %v",
			got[0].Timestamp, got[1].Timestamp, day(2), day(3))
	}
	if got[0].Close != 100.5 {
		t.Errorf("first bar close = %v, want 100.5", got[0].Close)
	}
}

func TestParquetStoreMergeDeduplicates(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	first := []domain.Bar{
		{Symbol: "AAPL", Timestamp: day(2), Close: 100},
		{Symbol: "AAPL", Timestamp: day(3), Close: 101},
	}
	if err := ps.WriteBars(ctx, first); err != nil {
		t.Fatal(err)
	}

	// Overlapping write: day 3 is revised, day 4 is new.
	second := []domain.Bar{
		{Symbol: "AAPL", Timestamp: day(3), Close: 200},
		{Symbol: "AAPL", Timestamp: day(4), Close: 102},
	}
	if err := ps.WriteBars(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := ps.ReadBars(ctx, "AAPL", day(1), day(31))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadBars returned %d bars after merge, want 3", len(got))
	}
	if got[1].Close != 200 {
		t.Errorf("revised day-3 close = %v, want 200 (incoming record should win)", got[1].Close)
	}
}

func TestParquetStoreListSymbols(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	symbols, err := ps.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols on empty store: %v", err)
	}
	if len(symbols) != 0 {
		t.Fatalf("ListSymbols on empty store = %v, want empty", symbols)
	}

	bars := []domain.Bar{
		{Symbol: "TSLA", Timestamp: day(2), Close: 200},
		{Symbol: "AAPL", Timestamp: day(2), Close: 100},
	}
	if err := ps.WriteBars(ctx, bars); err != nil {
		t.Fatal(err)
	}

	symbols, err = ps.ListSymbols(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "TSLA" {
		t.Errorf("ListSymbols = %v, want [AAPL TSLA]", symbols)
	}
}
