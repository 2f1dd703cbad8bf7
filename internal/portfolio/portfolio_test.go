package portfolio

import (
	"errors"
	"math"
	"testing"
	"time"

	"simtrader/internal/domain"
)

var ts = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func buyOrder(qty float64) domain.Order {
	return domain.Order{Symbol: "AAPL", Side: domain.OrderSideBuy, Qty: qty, RefPrice: 150}
}

func sellOrder(qty float64) domain.Order {
	return domain.Order{Symbol: "AAPL", Side: domain.OrderSideSell, Qty: qty, RefPrice: 150}
}

func TestBuyUpdatesCashAndPosition(t *testing.T) {
	p := New(100000, 0)

	trade, err := p.Execute(buyOrder(100), 150, ts)
	if err != nil {
		t.Fatalf("Execute(buy) returned error: %v", err)
	}

	if p.Cash() != 85000 {
		t.Errorf("cash after buy = %v, want 85000", p.Cash())
	}
	pos := p.Position("AAPL")
	if pos.Qty != 100 || pos.AvgCost != 150 {
		t.Errorf("position = %+v, want qty 100 avg cost 150", pos)
	}
	if trade.Side != domain.OrderSideBuy || trade.Qty != 100 || trade.Price != 150 {
		t.Errorf("trade = %+v", trade)
	}
	if trade.Closing {
		t.Error("buy trade marked as closing")
	}
}

func TestBuyConservation(t *testing.T) {
	p := New(100000, 0)
	marks := map[string]float64{"AAPL": 150}

	before := p.TotalValue(marks)
	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}
	after := p.TotalValue(marks)

	if math.Abs(after-before) > Epsilon {
		t.Errorf("total value changed by %v across a commission-free fill, want 0 within epsilon", after-before)
	}
}

func TestSellRealizesPnL(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}

	trade, err := p.Execute(sellOrder(40), 160, ts.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Execute(sell) returned error: %v", err)
	}

	wantPnL := (160.0 - 150.0) * 40
	if math.Abs(trade.RealizedPnL-wantPnL) > Epsilon {
		t.Errorf("RealizedPnL = %v, want %v", trade.RealizedPnL, wantPnL)
	}
	if !trade.Closing {
		t.Error("sell trade not marked as closing")
	}

	// Partial sell leaves the cost basis unchanged.
	pos := p.Position("AAPL")
	if pos.Qty != 60 || pos.AvgCost != 150 {
		t.Errorf("position after partial sell = %+v, want qty 60 avg cost 150", pos)
	}
}

func TestWeightedAverageCost(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(100), 100, ts); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Execute(buyOrder(50), 130, ts.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// (100*100 + 50*130) / 150 = 110.
	pos := p.Position("AAPL")
	if math.Abs(pos.AvgCost-110) > Epsilon {
		t.Errorf("AvgCost = %v, want 110", pos.AvgCost)
	}
	if pos.Qty != 150 {
		t.Errorf("Qty = %v, want 150", pos.Qty)
	}
}

func TestFullSellRemovesPosition(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Execute(sellOrder(100), 155, ts.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	if pos := p.Position("AAPL"); pos.Qty != 0 {
		t.Errorf("position after full sell = %+v, want absent", pos)
	}
	if _, ok := p.Snapshot().Positions["AAPL"]; ok {
		t.Error("snapshot still contains fully sold position")
	}
}

func TestBuyRejectedInsufficientCash(t *testing.T) {
	p := New(1000, 0)

	_, err := p.Execute(buyOrder(100), 150, ts)
	if !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("Execute = %v, want ErrInsufficientCash", err)
	}
	var rej *RejectedOrderError
	if !errors.As(err, &rej) {
		t.Fatalf("error type = %T, want *RejectedOrderError", err)
	}

	// No mutation, no ledger entry.
	if p.Cash() != 1000 {
		t.Errorf("cash after rejected buy = %v, want 1000", p.Cash())
	}
	if len(p.Trades()) != 0 {
		t.Errorf("ledger has %d entries after rejection, want 0", len(p.Trades()))
	}
}

func TestSellRejectedInsufficientHoldings(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(10), 150, ts); err != nil {
		t.Fatal(err)
	}

	_, err := p.Execute(sellOrder(20), 150, ts.AddDate(0, 0, 1))
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("oversell = %v, want ErrInsufficientHoldings", err)
	}

	// No short selling: position can never go below zero.
	if pos := p.Position("AAPL"); pos.Qty != 10 {
		t.Errorf("position after rejected oversell = %v, want 10", pos.Qty)
	}
}

func TestSellWithoutPositionRejected(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(sellOrder(1), 150, ts); !errors.Is(err, ErrInsufficientHoldings) {
		t.Errorf("sell with no position = %v, want ErrInsufficientHoldings", err)
	}
}

func TestRoundTripRestoresState(t *testing.T) {
	p := New(100000, 0)

	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Execute(sellOrder(100), 150, ts.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// Same price, zero commission: cash and positions exactly as before,
	// plus two ledger entries.
	if math.Abs(p.Cash()-100000) > Epsilon {
		t.Errorf("cash after round trip = %v, want 100000", p.Cash())
	}
	if pos := p.Position("AAPL"); pos.Qty != 0 {
		t.Errorf("position after round trip = %v, want 0", pos.Qty)
	}
	if len(p.Trades()) != 2 {
		t.Errorf("ledger has %d entries, want 2", len(p.Trades()))
	}
}

func TestCommissionDebitsCash(t *testing.T) {
	p := New(100000, 1)

	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}
	if p.Cash() != 100000-15000-1 {
		t.Errorf("cash after buy with commission = %v, want 84999", p.Cash())
	}

	if _, err := p.Execute(sellOrder(100), 150, ts.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if p.Cash() != 100000-2 {
		t.Errorf("cash after round trip with commission = %v, want 99998", p.Cash())
	}
}

func TestZeroQuantityOrderRejected(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(0), 150, ts); err == nil {
		t.Error("zero-quantity buy accepted, want rejection")
	}
	if len(p.Trades()) != 0 {
		t.Error("zero-quantity order produced a ledger entry")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}

	snap := p.Snapshot()
	snap.Positions["AAPL"] = domain.Position{Symbol: "AAPL", Qty: 9999}
	snap.Cash = 0

	if p.Position("AAPL").Qty != 100 {
		t.Error("mutating a snapshot changed the portfolio position")
	}
	if p.Cash() != 85000 {
		t.Error("mutating a snapshot changed the portfolio cash")
	}
}

func TestTotalValueMarks(t *testing.T) {
	p := New(100000, 0)
	if _, err := p.Execute(buyOrder(100), 150, ts); err != nil {
		t.Fatal(err)
	}

	got := p.TotalValue(map[string]float64{"AAPL": 160})
	if math.Abs(got-(85000+16000)) > Epsilon {
		t.Errorf("TotalValue at mark 160 = %v, want 101000", got)
	}

	// Missing mark falls back to average cost.
	got = p.TotalValue(nil)
	if math.Abs(got-100000) > Epsilon {
		t.Errorf("TotalValue without marks = %v, want 100000", got)
	}
}
