package builtins

import (
	"testing"
	"time"

	"simtrader/internal/config"
	"simtrader/internal/domain"
)

// barsFromCloses builds a daily bar series from a close price sequence.
func barsFromCloses(closes []float64) []domain.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    "AAPL",
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    100000,
		}
	}
	return bars
}

// constant returns n copies of v.
func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSMACrossInsufficientHistory(t *testing.T) {
	s := NewSMACross(2, 4)
	bars := barsFromCloses([]float64{100, 101, 102})

	sig, err := s.OnBar(bars)
	if err != nil {
		t.Fatalf("OnBar returned error: %v", err)
	}
	if sig.Action != domain.ActionHold {
		t.Errorf("signal with insufficient history = %q, want hold", sig.Action)
	}
}

func TestSMACrossDetectsUpCross(t *testing.T) {
	s := NewSMACross(2, 4)

	// Flat at 100, then a sharp rally: the 2-bar SMA overtakes the 4-bar SMA.
	closes := append(constant(6, 100), 110, 120)
	bars := barsFromCloses(closes)

	var buys, sells int
	for i := s.WarmupPeriod(); i <= len(bars); i++ {
		sig, err := s.OnBar(bars[:i])
		if err != nil {
			t.Fatalf("OnBar(%d) returned error: %v", i, err)
		}
		switch sig.Action {
		case domain.ActionBuy:
			buys++
		case domain.ActionSell:
			sells++
		}
	}

	if buys != 1 {
		t.Errorf("rally produced %d buy signals, want exactly 1 (cross event)", buys)
	}
	if sells != 0 {
		t.Errorf("rally produced %d sell signals, want 0", sells)
	}
}

func TestSMACrossDetectsDownCross(t *testing.T) {
	s := NewSMACross(2, 4)

	closes := append(constant(6, 100), 90, 80)
	bars := barsFromCloses(closes)

	sawSell := false
	for i := s.WarmupPeriod(); i <= len(bars); i++ {
		sig, err := s.OnBar(bars[:i])
		if err != nil {
			t.Fatal(err)
		}
		if sig.Action == domain.ActionSell {
			sawSell = true
		}
		if sig.Action == domain.ActionBuy {
			t.Errorf("selloff produced a buy signal at bar %d", i)
		}
	}
	if !sawSell {
		t.Error("selloff produced no sell signal")
	}
}

func TestRSIOversoldBuys(t *testing.T) {
	s := NewRSI(14, 30, 70)

	// Steady decline: RSI approaches 0.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	sig, err := s.OnBar(barsFromCloses(closes))
	if err != nil {
		t.Fatalf("OnBar returned error: %v", err)
	}
	if sig.Action != domain.ActionBuy {
		t.Errorf("signal after steady decline = %q, want buy", sig.Action)
	}
}

func TestRSIOverboughtSells(t *testing.T) {
	s := NewRSI(14, 30, 70)

	// Steady rally: RSI approaches 100.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	sig, err := s.OnBar(barsFromCloses(closes))
	if err != nil {
		t.Fatalf("OnBar returned error: %v", err)
	}
	if sig.Action != domain.ActionSell {
		t.Errorf("signal after steady rally = %q, want sell", sig.Action)
	}
}

func TestRSIInsufficientHistoryHolds(t *testing.T) {
	s := NewRSI(14, 30, 70)
	sig, err := s.OnBar(barsFromCloses(constant(5, 100)))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != domain.ActionHold {
		t.Errorf("signal with 5 bars = %q, want hold", sig.Action)
	}
}

func TestMomentumSignals(t *testing.T) {
	s := NewMomentum(5, 0.02)

	up := barsFromCloses([]float64{100, 100, 100, 100, 100, 100, 110})
	sig, err := s.OnBar(up)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != domain.ActionBuy {
		t.Errorf("10%% rally over lookback = %q, want buy", sig.Action)
	}
	if sig.Strength <= 0 || sig.Strength > 1 {
		t.Errorf("buy strength = %v, want in (0, 1]", sig.Strength)
	}

	down := barsFromCloses([]float64{100, 100, 100, 100, 100, 100, 90})
	sig, err = s.OnBar(down)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != domain.ActionSell {
		t.Errorf("10%% selloff over lookback = %q, want sell", sig.Action)
	}

	flat := barsFromCloses([]float64{100, 100, 100, 100, 100, 100, 100.5})
	sig, err = s.OnBar(flat)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != domain.ActionHold {
		t.Errorf("0.5%% move under 2%% threshold = %q, want hold", sig.Action)
	}
}

func TestMomentumInsufficientHistoryHolds(t *testing.T) {
	s := NewMomentum(14, 0.02)
	sig, err := s.OnBar(barsFromCloses(constant(10, 100)))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != domain.ActionHold {
		t.Errorf("signal with 10 bars = %q, want hold", sig.Action)
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{"sma-cross", "sma-cross", false},
		{"rsi", "rsi", false},
		{"momentum", "momentum", false},
		{"hodl", "", true},
	}

	for _, tt := range tests {
		cfg := config.Default().Strategy
		cfg.Name = tt.name

		s, err := FromConfig(cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FromConfig(%q) = nil error, want error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromConfig(%q) returned error: %v", tt.name, err)
			continue
		}
		if s.Name() != tt.wantName {
			t.Errorf("FromConfig(%q).Name() = %q", tt.name, s.Name())
		}
	}
}

func TestNewRegistryHasAllBuiltins(t *testing.T) {
	r := NewRegistry(config.Default().Strategy)
	names := r.List()
	want := []string{"momentum", "rsi", "sma-cross"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
