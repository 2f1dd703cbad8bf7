package risk

import (
	"testing"

	"simtrader/internal/domain"
	"simtrader/internal/portfolio"
)

func snapshot(cash float64, positions map[string]domain.Position) portfolio.Snapshot {
	if positions == nil {
		positions = map[string]domain.Position{}
	}
	return portfolio.Snapshot{Cash: cash, Positions: positions}
}

func buySignal() domain.Signal {
	return domain.Signal{Symbol: "AAPL", Action: domain.ActionBuy, Strength: 1}
}

func TestSizeOrderBuyMinOfCaps(t *testing.T) {
	// Total 100000 at price 100: size cap allows 100 shares, risk cap
	// allows floor(100000*0.02 / (100*0.05)) = 400. Min wins.
	m := NewManager(0.10, 0.02, 0.05)

	order := m.SizeOrder(buySignal(), snapshot(100000, nil), 100)
	if order.Side != domain.OrderSideBuy {
		t.Fatalf("order side = %q, want buy", order.Side)
	}
	if order.Qty != 100 {
		t.Errorf("order qty = %v, want 100 (size cap)", order.Qty)
	}
}

func TestSizeOrderBuyRiskCapBinds(t *testing.T) {
	// Wide size cap, tight risk cap: floor(100000*0.01 / (100*0.05)) = 200.
	m := NewManager(0.50, 0.01, 0.05)

	order := m.SizeOrder(buySignal(), snapshot(100000, nil), 100)
	if order.Qty != 200 {
		t.Errorf("order qty = %v, want 200 (risk cap)", order.Qty)
	}
}

func TestSizeOrderBuySubtractsHeld(t *testing.T) {
	// 80 shares already held at a 100-share cap leaves room for 20.
	m := NewManager(0.10, 0.50, 0.05)
	snap := snapshot(92000, map[string]domain.Position{
		"AAPL": {Symbol: "AAPL", Qty: 80, AvgCost: 100},
	})

	order := m.SizeOrder(buySignal(), snap, 100)
	if order.Qty != 20 {
		t.Errorf("order qty = %v, want 20", order.Qty)
	}
}

func TestSizeOrderBuyAtCapIsZero(t *testing.T) {
	m := NewManager(0.10, 0.50, 0.05)
	snap := snapshot(88000, map[string]domain.Position{
		"AAPL": {Symbol: "AAPL", Qty: 120, AvgCost: 100},
	})

	// Held quantity already exceeds the cap: clamp to zero, never sell.
	order := m.SizeOrder(buySignal(), snap, 100)
	if !order.IsZero() {
		t.Errorf("order over cap = %+v, want zero quantity", order)
	}
}

func TestSizeOrderFractionalSharesFloored(t *testing.T) {
	// 100000 * 0.10 / 333 = 30.03 shares; floor to 30.
	m := NewManager(0.10, 0.50, 0.05)

	order := m.SizeOrder(buySignal(), snapshot(100000, nil), 333)
	if order.Qty != 30 {
		t.Errorf("order qty = %v, want 30", order.Qty)
	}
}

func TestSizeOrderSellLiquidates(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	snap := snapshot(50000, map[string]domain.Position{
		"AAPL": {Symbol: "AAPL", Qty: 75, AvgCost: 120},
	})

	sig := domain.Signal{Symbol: "AAPL", Action: domain.ActionSell, Strength: 1}
	order := m.SizeOrder(sig, snap, 140)
	if order.Side != domain.OrderSideSell || order.Qty != 75 {
		t.Errorf("sell order = %+v, want full 75 shares", order)
	}
}

func TestSizeOrderSellWithoutPositionIsZero(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	sig := domain.Signal{Symbol: "AAPL", Action: domain.ActionSell, Strength: 1}

	if order := m.SizeOrder(sig, snapshot(100000, nil), 140); !order.IsZero() {
		t.Errorf("sell with no position = %+v, want zero quantity", order)
	}
}

func TestSizeOrderHoldIsZero(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	if order := m.SizeOrder(domain.Hold("AAPL"), snapshot(100000, nil), 100); !order.IsZero() {
		t.Errorf("hold signal produced order %+v, want zero quantity", order)
	}
}

func TestSizeOrderNonPositivePriceIsZero(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	if order := m.SizeOrder(buySignal(), snapshot(100000, nil), 0); !order.IsZero() {
		t.Errorf("buy at price 0 produced order %+v, want zero quantity", order)
	}
}

func TestNewManagerDefaultStopFraction(t *testing.T) {
	// Zero stop fraction selects 5%: risk cap floor(100000*0.02/(100*0.05)).
	m := NewManager(1, 0.02, 0)

	order := m.SizeOrder(buySignal(), snapshot(100000, nil), 100)
	if order.Qty != 400 {
		t.Errorf("order qty = %v, want 400 with default stop fraction", order.Qty)
	}
}

func TestCheckPositionLimits(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	snap := snapshot(70000, map[string]domain.Position{
		"AAPL": {Symbol: "AAPL", Qty: 200, AvgCost: 100}, // 20% at mark 100
		"MSFT": {Symbol: "MSFT", Qty: 50, AvgCost: 200},  // 10% at mark 200
	})
	marks := map[string]float64{"AAPL": 100, "MSFT": 200}

	violations := m.CheckPositionLimits(snap, marks)
	if !violations["AAPL"] {
		t.Error("AAPL at 20% weight not flagged against a 10% limit")
	}
	if violations["MSFT"] {
		t.Error("MSFT exactly at the limit flagged as a violation")
	}
}

func TestSuggestRebalancing(t *testing.T) {
	m := NewManager(0.10, 0.02, 0.05)
	snap := snapshot(70000, map[string]domain.Position{
		"AAPL": {Symbol: "AAPL", Qty: 200, AvgCost: 100},
		"MSFT": {Symbol: "MSFT", Qty: 50, AvgCost: 200},
	})
	marks := map[string]float64{"AAPL": 100, "MSFT": 200}

	suggestions := m.SuggestRebalancing(snap, marks)
	// Total 100000, 10% limit at mark 100 targets 100 shares: sell 100.
	if got, ok := suggestions["AAPL"]; !ok || got != -100 {
		t.Errorf("AAPL suggestion = %v (present %v), want -100", got, ok)
	}
	if _, ok := suggestions["MSFT"]; ok {
		t.Error("MSFT within the limit received a rebalancing suggestion")
	}
}
