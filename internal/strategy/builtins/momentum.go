package builtins

import (
	"math"

	"simtrader/internal/domain"
	"simtrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Momentum)(nil)

// Momentum implements a trailing-return strategy: buy when the return over
// the lookback window exceeds the threshold, sell when it falls below the
// negated threshold.
type Momentum struct {
	lookback  int
	threshold float64
}

// NewMomentum creates a Momentum strategy with the given lookback window and
// return threshold.
func NewMomentum(lookback int, threshold float64) *Momentum {
	return &Momentum{
		lookback:  lookback,
		threshold: threshold,
	}
}

// Name returns "momentum".
func (s *Momentum) Name() string {
	return "momentum"
}

// WarmupPeriod returns one bar past the lookback window.
func (s *Momentum) WarmupPeriod() int {
	return s.lookback + 1
}

// OnBar computes the trailing return over the lookback window. Signal
// strength scales with how far the return exceeds the threshold, capped at 1.
func (s *Momentum) OnBar(history []domain.Bar) (domain.Signal, error) {
	symbol := history[len(history)-1].Symbol
	if len(history) < s.WarmupPeriod() {
		return domain.Hold(symbol), nil
	}

	latest := history[len(history)-1].Close
	base := history[len(history)-1-s.lookback].Close
	if base == 0 {
		return domain.Hold(symbol), nil
	}
	momentum := (latest - base) / base

	strength := math.Min(math.Abs(momentum)/(2*s.threshold), 1)

	switch {
	case momentum > s.threshold:
		return domain.Signal{Symbol: symbol, Action: domain.ActionBuy, Strength: strength}, nil
	case momentum < -s.threshold:
		return domain.Signal{Symbol: symbol, Action: domain.ActionSell, Strength: strength}, nil
	default:
		return domain.Hold(symbol), nil
	}
}
