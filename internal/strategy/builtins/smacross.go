// Package builtins provides the built-in strategy implementations that ship
// with simtrader.
package builtins

import (
	"github.com/thrasher-corp/gct-ta/indicators"

	"simtrader/internal/domain"
	"simtrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross implements a moving average crossover strategy. It emits a buy
// signal on the bar where the short-period SMA crosses above the long-period
// SMA, a sell signal on the reverse cross, and hold otherwise.
type SMACross struct {
	shortPeriod int
	longPeriod  int
}

// NewSMACross creates an SMACross strategy with the specified short and long
// moving average periods. Callers validate short < long before construction.
func NewSMACross(short, long int) *SMACross {
	return &SMACross{
		shortPeriod: short,
		longPeriod:  long,
	}
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return "sma-cross"
}

// WarmupPeriod returns one bar past the long window, since detecting a cross
// needs the previous bar's averages as well.
func (s *SMACross) WarmupPeriod() int {
	return s.longPeriod + 1
}

// OnBar detects a crossover between the short and long SMA of the visible
// close history.
func (s *SMACross) OnBar(history []domain.Bar) (domain.Signal, error) {
	symbol := history[len(history)-1].Symbol
	if len(history) < s.WarmupPeriod() {
		return domain.Hold(symbol), nil
	}

	closes := domain.Closes(history)
	shortNow := lastSMA(closes, s.shortPeriod)
	longNow := lastSMA(closes, s.longPeriod)
	shortPrev := lastSMA(closes[:len(closes)-1], s.shortPeriod)
	longPrev := lastSMA(closes[:len(closes)-1], s.longPeriod)

	switch {
	case shortPrev <= longPrev && shortNow > longNow:
		return domain.Signal{Symbol: symbol, Action: domain.ActionBuy, Strength: 1}, nil
	case shortPrev >= longPrev && shortNow < longNow:
		return domain.Signal{Symbol: symbol, Action: domain.ActionSell, Strength: 1}, nil
	default:
		return domain.Hold(symbol), nil
	}
}

// lastSMA returns the most recent simple moving average of the series.
func lastSMA(values []float64, period int) float64 {
	sma := indicators.SMA(values, period)
	return sma[len(sma)-1]
}
