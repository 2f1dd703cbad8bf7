// Package risk converts trading signals into risk-bounded orders and checks
// standing positions against configured exposure limits.
package risk

import (
	"math"

	"simtrader/internal/domain"
	"simtrader/internal/portfolio"
)

// Manager enforces position sizing limits. It never rejects a signal
// outright: adverse sizing clamps the order quantity, down to zero.
type Manager struct {
	maxPositionSize  float64 // fraction of equity allowed in one instrument
	maxPortfolioRisk float64 // fraction of equity at risk per trade
	stopRiskFraction float64 // assumed stop distance as a fraction of entry price
}

// NewManager creates a Manager with the given limits. stopRiskFraction is
// the per-share risk assumption used for the portfolio-risk cap; zero
// selects the 5% default.
func NewManager(maxPositionSize, maxPortfolioRisk, stopRiskFraction float64) *Manager {
	if stopRiskFraction == 0 {
		stopRiskFraction = 0.05
	}
	return &Manager{
		maxPositionSize:  maxPositionSize,
		maxPortfolioRisk: maxPortfolioRisk,
		stopRiskFraction: stopRiskFraction,
	}
}

// SizeOrder converts a signal into a bounded order against the given
// portfolio snapshot and current price.
//
// Buys take the minimum of two caps, floored to whole shares: the quantity
// that brings the position to maxPositionSize of total value, and the
// quantity whose assumed stop-loss risk stays within maxPortfolioRisk of
// total value. Sells liquidate the held quantity; short selling is never
// produced. A hold signal, an unknown action, or caps of zero all yield a
// zero-quantity order.
func (m *Manager) SizeOrder(sig domain.Signal, snap portfolio.Snapshot, price float64) domain.Order {
	switch sig.Action {
	case domain.ActionBuy:
		if price <= 0 {
			return domain.Order{Symbol: sig.Symbol, Side: domain.OrderSideBuy, RefPrice: price}
		}
		total := snap.TotalValue(map[string]float64{sig.Symbol: price})

		// Position cap counts what is already held in the instrument.
		held := snap.Positions[sig.Symbol].Qty
		bySize := math.Floor((total*m.maxPositionSize)/price - held)

		riskPerShare := price * m.stopRiskFraction
		byRisk := math.Floor(total * m.maxPortfolioRisk / riskPerShare)

		qty := math.Min(bySize, byRisk)
		if qty < 0 {
			qty = 0
		}
		return domain.Order{Symbol: sig.Symbol, Side: domain.OrderSideBuy, Qty: qty, RefPrice: price}

	case domain.ActionSell:
		held := snap.Positions[sig.Symbol].Qty
		return domain.Order{Symbol: sig.Symbol, Side: domain.OrderSideSell, Qty: held, RefPrice: price}

	default:
		return domain.Order{Symbol: sig.Symbol, Side: domain.OrderSideBuy, RefPrice: price}
	}
}

// CheckPositionLimits reports, per held symbol, whether its weight exceeds
// maxPositionSize of total portfolio value at the given marks.
func (m *Manager) CheckPositionLimits(snap portfolio.Snapshot, marks map[string]float64) map[string]bool {
	total := snap.TotalValue(marks)
	violations := make(map[string]bool, len(snap.Positions))
	if total <= 0 {
		return violations
	}

	for symbol, pos := range snap.Positions {
		mark, ok := marks[symbol]
		if !ok {
			continue
		}
		weight := pos.MarketValue(mark) / total
		violations[symbol] = weight > m.maxPositionSize
	}
	return violations
}

// SuggestRebalancing returns, for each position above the size limit, the
// quantity adjustment that would bring it back to the limit. Negative values
// mean sell.
func (m *Manager) SuggestRebalancing(snap portfolio.Snapshot, marks map[string]float64) map[string]float64 {
	total := snap.TotalValue(marks)
	suggestions := make(map[string]float64)
	if total <= 0 {
		return suggestions
	}

	for symbol, pos := range snap.Positions {
		mark, ok := marks[symbol]
		if !ok || mark <= 0 {
			continue
		}
		weight := pos.MarketValue(mark) / total
		if weight > m.maxPositionSize {
			target := math.Floor(total * m.maxPositionSize / mark)
			suggestions[symbol] = target - pos.Qty
		}
	}
	return suggestions
}
