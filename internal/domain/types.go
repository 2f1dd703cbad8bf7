// Package domain defines the core value types shared across the simtrader
// system: market bars, trading signals, orders, executed trades, and
// positions.
package domain

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------------

// Bar is a single timestamped OHLCV market observation. Bars are immutable
// once produced; a bar series for one symbol is strictly increasing by
// timestamp.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// BarOrderingError reports a bar series that violates the strictly
// increasing timestamp contract.
type BarOrderingError struct {
	Symbol string
	Index  int
	Prev   time.Time
	Curr   time.Time
}

func (e *BarOrderingError) Error() string {
	return fmt.Sprintf("bar ordering violation for %s at index %d: %s is not after %s",
		e.Symbol, e.Index, e.Curr.Format(time.RFC3339), e.Prev.Format(time.RFC3339))
}

// ValidateBars checks that the series has strictly increasing timestamps
// with no duplicates. It returns a *BarOrderingError describing the first
// violation found, or nil if the series is well formed.
func ValidateBars(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return &BarOrderingError{
				Symbol: bars[i].Symbol,
				Index:  i,
				Prev:   bars[i-1].Timestamp,
				Curr:   bars[i].Timestamp,
			}
		}
	}
	return nil
}

// Closes extracts the close price series from a bar slice.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}
	return closes
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

// SignalAction is the directional recommendation carried by a Signal.
type SignalAction string

const (
	ActionBuy  SignalAction = "buy"
	ActionSell SignalAction = "sell"
	ActionHold SignalAction = "hold"
)

// Signal is a strategy's recommendation for the next trading decision. It is
// produced fresh on every bar and never persisted by the core.
type Signal struct {
	Symbol   string
	Action   SignalAction
	Strength float64 // confidence in [0, 1]
}

// Validate reports whether the signal is well formed. The backtest engine
// treats a malformed signal as a strategy fault, not as a hold.
func (s Signal) Validate() error {
	switch s.Action {
	case ActionBuy, ActionSell, ActionHold:
	default:
		return fmt.Errorf("invalid signal action %q", s.Action)
	}
	if s.Strength < 0 || s.Strength > 1 {
		return fmt.Errorf("signal strength %v outside [0, 1]", s.Strength)
	}
	return nil
}

// Hold returns a hold signal for the given symbol.
func Hold(symbol string) Signal {
	return Signal{Symbol: symbol, Action: ActionHold}
}

// ---------------------------------------------------------------------------
// Orders and trades
// ---------------------------------------------------------------------------

// OrderSide is the direction of an order or executed trade.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is a risk-bounded trade instruction derived from a Signal. A zero
// quantity means "do not trade" and is not an error.
type Order struct {
	Symbol   string
	Side     OrderSide
	Qty      float64 // whole shares; sizing floors to the tradable unit
	RefPrice float64 // price the sizing decision was made against
}

// IsZero reports whether the order carries no tradable quantity.
func (o Order) IsZero() bool {
	return o.Qty <= 0
}

// Trade is one immutable entry in the append-only trade ledger. Closing is
// true for fills that reduce a position; RealizedPnL is only meaningful on
// closing fills.
type Trade struct {
	Symbol      string    `json:"symbol"`
	Side        OrderSide `json:"side"`
	Qty         float64   `json:"qty"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
	Commission  float64   `json:"commission"`
	RealizedPnL float64   `json:"realized_pnl"`
	Closing     bool      `json:"closing"`
}

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

// Position is a non-negative holding in a single symbol. AvgCost is the
// quantity-weighted average acquisition price; it is recomputed on every buy
// and left unchanged by partial sells. A position with Qty == 0 is absent.
type Position struct {
	Symbol  string
	Qty     float64
	AvgCost float64
}

// MarketValue returns the position's value at the given mark price.
func (p Position) MarketValue(mark float64) float64 {
	return p.Qty * mark
}
