package builtins

import (
	"github.com/thrasher-corp/gct-ta/indicators"

	"simtrader/internal/domain"
	"simtrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*RSI)(nil)

// RSI implements a relative strength index mean-reversion strategy: buy when
// the oscillator drops below the oversold threshold, sell when it rises
// above the overbought threshold.
type RSI struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSI creates an RSI strategy. Callers validate oversold < overbought
// before construction.
func NewRSI(period int, oversold, overbought float64) *RSI {
	return &RSI{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}
}

// Name returns "rsi".
func (s *RSI) Name() string {
	return "rsi"
}

// WarmupPeriod returns one bar past the oscillator period, which needs that
// many price deltas.
func (s *RSI) WarmupPeriod() int {
	return s.period + 1
}

// OnBar evaluates the oscillator over the visible close history and compares
// it against the configured thresholds.
func (s *RSI) OnBar(history []domain.Bar) (domain.Signal, error) {
	symbol := history[len(history)-1].Symbol
	if len(history) < s.WarmupPeriod() {
		return domain.Hold(symbol), nil
	}

	rsi := indicators.RSI(domain.Closes(history), s.period)
	latest := rsi[len(rsi)-1]

	switch {
	case latest < s.oversold:
		return domain.Signal{Symbol: symbol, Action: domain.ActionBuy, Strength: 1}, nil
	case latest > s.overbought:
		return domain.Signal{Symbol: symbol, Action: domain.ActionSell, Strength: 1}, nil
	default:
		return domain.Hold(symbol), nil
	}
}
