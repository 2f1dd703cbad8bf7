package builtins

import (
	"fmt"

	"simtrader/internal/config"
	"simtrader/internal/strategy"
)

// FromConfig builds the strategy selected by cfg. The configuration is
// assumed to have passed config validation; unknown names still produce an
// error for callers constructing configs by hand.
func FromConfig(cfg config.StrategyConfig) (strategy.Strategy, error) {
	switch cfg.Name {
	case "sma-cross":
		return NewSMACross(cfg.ShortWindow, cfg.LongWindow), nil
	case "rsi":
		return NewRSI(cfg.RSIPeriod, cfg.RSIOversold, cfg.RSIOverbought), nil
	case "momentum":
		return NewMomentum(cfg.Lookback, cfg.Threshold), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}
}

// NewRegistry returns a Registry pre-populated with every built-in strategy
// at the given configuration.
func NewRegistry(cfg config.StrategyConfig) *strategy.Registry {
	r := strategy.NewRegistry()
	r.Register(NewSMACross(cfg.ShortWindow, cfg.LongWindow))
	r.Register(NewRSI(cfg.RSIPeriod, cfg.RSIOversold, cfg.RSIOverbought))
	r.Register(NewMomentum(cfg.Lookback, cfg.Threshold))
	return r
}
