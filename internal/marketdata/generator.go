package marketdata

import (
	"context"
	"math"
	"math/rand"
	"time"

	"simtrader/internal/domain"
)

// Compile-time interface check.
var _ Source = (*Generator)(nil)

// Generator produces synthetic daily OHLCV bars by a geometric Brownian
// motion walk. The generator owns an explicitly seeded *rand.Rand, so the
// same parameters always reproduce the same series; the backtest core never
// touches randomness itself.
type Generator struct {
	bars       int
	startPrice float64
	volatility float64
	drift      float64
	start      time.Time
	seed       int64
}

// GeneratorOpts parameterises a synthetic series.
type GeneratorOpts struct {
	Bars       int
	StartPrice float64
	Volatility float64   // per-bar return stddev
	Drift      float64   // per-bar mean return; defaults to 0.0005 when zero
	Start      time.Time // timestamp of the first bar
	Seed       int64
}

// NewGenerator creates a Generator for the given options.
func NewGenerator(opts GeneratorOpts) *Generator {
	drift := opts.Drift
	if drift == 0 {
		drift = 0.0005
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	return &Generator{
		bars:       opts.Bars,
		startPrice: opts.StartPrice,
		volatility: opts.Volatility,
		drift:      drift,
		start:      start,
		seed:       opts.Seed,
	}
}

// Name returns "synthetic".
func (g *Generator) Name() string { return "synthetic" }

// Bars generates the synthetic series for the symbol. Each call constructs a
// fresh deterministic RNG from the seed, so repeated calls return identical
// series.
func (g *Generator) Bars(_ context.Context, symbol string) ([]domain.Bar, error) {
	rng := rand.New(rand.NewSource(g.seed))

	bars := make([]domain.Bar, 0, g.bars)
	price := g.startPrice
	ts := g.start

	for i := 0; i < g.bars; i++ {
		if i > 0 {
			price *= 1 + rng.NormFloat64()*g.volatility + g.drift
		}

		open := price * (1 + rng.NormFloat64()*0.002)
		high := price * (1 + math.Abs(rng.NormFloat64())*0.01)
		low := price * (1 - math.Abs(rng.NormFloat64())*0.01)
		volume := 100000 + rng.Int63n(900000)

		// Clamp so that high >= max(open, close) and low <= min(open, close).
		high = math.Max(high, math.Max(open, price))
		low = math.Min(low, math.Min(open, price))

		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    volume,
		})
		ts = ts.AddDate(0, 0, 1)
	}

	return validated("synthetic", bars)
}
