// Package portfolio tracks cash, positions, and the append-only trade
// ledger for one simulation run. The Portfolio is the only place portfolio
// state mutates; everything else sees read-only snapshots.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"simtrader/internal/domain"
)

// Epsilon is the documented tolerance for cash conservation checks; all
// accounting is exact float64 arithmetic, so drift beyond this indicates a
// bug rather than rounding.
const Epsilon = 1e-9

// Rejection sentinels. A rejected order leaves the portfolio untouched.
var (
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// RejectedOrderError wraps a rejection sentinel with the order that was
// refused. Rejections are recoverable: the engine logs them and the
// simulation continues.
type RejectedOrderError struct {
	Order domain.Order
	Err   error
}

func (e *RejectedOrderError) Error() string {
	return fmt.Sprintf("order rejected (%s %v %s @ %v): %v",
		e.Order.Side, e.Order.Qty, e.Order.Symbol, e.Order.RefPrice, e.Err)
}

func (e *RejectedOrderError) Unwrap() error { return e.Err }

// Portfolio holds cash and positions with an append-only trade ledger.
// It is owned by a single engine per run; no internal locking.
type Portfolio struct {
	cash       float64
	commission float64 // flat per-fill commission
	positions  map[string]domain.Position
	trades     []domain.Trade
}

// New creates a Portfolio with the given starting cash and a flat per-fill
// commission (zero for frictionless simulation).
func New(initialCash, commission float64) *Portfolio {
	return &Portfolio{
		cash:       initialCash,
		commission: commission,
		positions:  make(map[string]domain.Position),
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Execute applies the order at the given price and timestamp. It returns
// the ledger entry on acceptance, or a *RejectedOrderError with the state
// unchanged. A zero-quantity order is rejected as insufficient: callers are
// expected to skip those.
//
// Buys debit cash exactly and recompute the weighted-average cost basis;
// sells credit cash, realize P&L against the basis, and leave the basis
// unchanged on partial liquidation. A position reaching zero quantity is
// removed from the active set.
func (p *Portfolio) Execute(order domain.Order, price float64, ts time.Time) (domain.Trade, error) {
	switch order.Side {
	case domain.OrderSideBuy:
		return p.buy(order, price, ts)
	case domain.OrderSideSell:
		return p.sell(order, price, ts)
	default:
		return domain.Trade{}, fmt.Errorf("unknown order side %q", order.Side)
	}
}

func (p *Portfolio) buy(order domain.Order, price float64, ts time.Time) (domain.Trade, error) {
	cost := order.Qty*price + p.commission
	if order.IsZero() || cost > p.cash {
		return domain.Trade{}, &RejectedOrderError{Order: order, Err: ErrInsufficientCash}
	}

	pos := p.positions[order.Symbol]
	newQty := pos.Qty + order.Qty
	pos.AvgCost = (pos.Qty*pos.AvgCost + order.Qty*price) / newQty
	pos.Qty = newQty
	pos.Symbol = order.Symbol
	p.positions[order.Symbol] = pos

	p.cash -= cost

	trade := domain.Trade{
		Symbol:     order.Symbol,
		Side:       domain.OrderSideBuy,
		Qty:        order.Qty,
		Price:      price,
		Timestamp:  ts,
		Commission: p.commission,
	}
	p.trades = append(p.trades, trade)
	return trade, nil
}

func (p *Portfolio) sell(order domain.Order, price float64, ts time.Time) (domain.Trade, error) {
	pos, ok := p.positions[order.Symbol]
	if !ok || order.IsZero() || order.Qty > pos.Qty {
		return domain.Trade{}, &RejectedOrderError{Order: order, Err: ErrInsufficientHoldings}
	}
	proceeds := order.Qty*price - p.commission
	if p.cash+proceeds < 0 {
		// Commission exceeding proceeds and cash would break cash >= 0.
		return domain.Trade{}, &RejectedOrderError{Order: order, Err: ErrInsufficientCash}
	}

	pos.Qty -= order.Qty
	if pos.Qty <= Epsilon {
		delete(p.positions, order.Symbol)
	} else {
		p.positions[order.Symbol] = pos
	}

	p.cash += proceeds

	trade := domain.Trade{
		Symbol:      order.Symbol,
		Side:        domain.OrderSideSell,
		Qty:         order.Qty,
		Price:       price,
		Timestamp:   ts,
		Commission:  p.commission,
		RealizedPnL: (price - pos.AvgCost) * order.Qty,
		Closing:     true,
	}
	p.trades = append(p.trades, trade)
	return trade, nil
}

// TotalValue returns cash plus the value of all positions at the given mark
// prices. A position without a mark is valued at its average cost, which
// matters only for multi-instrument portfolios marked partially.
func (p *Portfolio) TotalValue(marks map[string]float64) float64 {
	total := p.cash
	for symbol, pos := range p.positions {
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgCost
		}
		total += pos.MarketValue(mark)
	}
	return total
}

// Position returns the active position for the symbol; the zero value when
// none is held.
func (p *Portfolio) Position(symbol string) domain.Position {
	return p.positions[symbol]
}

// Trades returns a copy of the trade ledger in execution order.
func (p *Portfolio) Trades() []domain.Trade {
	out := make([]domain.Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Snapshot is a read-only copy of portfolio state handed to strategies and
// the risk manager. Mutating a snapshot has no effect on the portfolio.
type Snapshot struct {
	Cash      float64
	Positions map[string]domain.Position
}

// Snapshot returns a copy of the current state.
func (p *Portfolio) Snapshot() Snapshot {
	positions := make(map[string]domain.Position, len(p.positions))
	for symbol, pos := range p.positions {
		positions[symbol] = pos
	}
	return Snapshot{Cash: p.cash, Positions: positions}
}

// TotalValue returns cash plus position values at the given marks, with the
// same missing-mark fallback as Portfolio.TotalValue.
func (s Snapshot) TotalValue(marks map[string]float64) float64 {
	total := s.Cash
	for symbol, pos := range s.Positions {
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgCost
		}
		total += pos.MarketValue(mark)
	}
	return total
}
