package backtest

import (
	"math"
	"sort"

	"simtrader/internal/config"
	"simtrader/internal/domain"
)

// Analyzer computes performance metrics from an equity curve and a trade
// ledger. It is pure: the same inputs always produce the same Metrics.
type Analyzer struct {
	varConfidence  float64
	periodsPerYear float64
	riskFreeRate   float64 // annual
}

// NewAnalyzer creates an Analyzer from config. Zero values select the
// defaults: 5% VaR confidence, 252 periods per year, 2% risk-free rate.
func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	a := &Analyzer{
		varConfidence:  cfg.VaRConfidence,
		periodsPerYear: cfg.PeriodsPerYear,
		riskFreeRate:   cfg.RiskFreeRate,
	}
	if a.varConfidence == 0 {
		a.varConfidence = 0.05
	}
	if a.periodsPerYear == 0 {
		a.periodsPerYear = 252
	}
	if a.riskFreeRate == 0 {
		a.riskFreeRate = 0.02
	}
	return a
}

// Analyze computes Metrics over a run. The equity series is the initial
// cash followed by the per-bar samples, so the first bar's move counts.
func (a *Analyzer) Analyze(initialCash float64, curve []EquityPoint, trades []domain.Trade) Metrics {
	values := make([]float64, 0, len(curve)+1)
	values = append(values, initialCash)
	for _, pt := range curve {
		values = append(values, pt.Value)
	}
	returns := periodReturns(values)

	m := Metrics{
		SharpeRatio: a.sharpeRatio(returns),
		MaxDrawdown: maxDrawdown(values),
		ValueAtRisk: a.valueAtRisk(returns),
		WinRate:     winRate(trades),
		TotalTrades: len(trades),
	}
	if initialCash > 0 {
		final := values[len(values)-1]
		m.TotalReturn = (final - initialCash) / initialCash
	}
	return m
}

// periodReturns computes simple per-period returns over the value series.
func periodReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-prev)/prev)
	}
	return returns
}

// sharpeRatio is the annualized mean excess return over the population
// standard deviation of returns. Zero when the series is too short or flat.
func (a *Analyzer) sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	perPeriodRF := a.riskFreeRate / a.periodsPerYear
	var sum, excess float64
	for _, r := range returns {
		sum += r
		excess += r - perPeriodRF
	}
	mean := sum / float64(len(returns))
	avgExcess := excess / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return avgExcess / std * math.Sqrt(a.periodsPerYear)
}

// maxDrawdown is the largest peak-to-trough decline over the value series,
// as a fraction of the peak. Always in [0, 1]; 0 for a non-decreasing
// series.
func maxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	peak := values[0]
	var maxDD float64
	for _, v := range values[1:] {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// valueAtRisk is the historical VaR: the return at the confidence quantile
// of the sorted per-period returns. Negative for a losing tail.
func (a *Analyzer) valueAtRisk(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * a.varConfidence)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// winRate is the fraction of closing trades whose realized P&L is positive.
// Zero when no position was ever closed.
func winRate(trades []domain.Trade) float64 {
	var closed, won int
	for _, tr := range trades {
		if !tr.Closing {
			continue
		}
		closed++
		if tr.RealizedPnL > 0 {
			won++
		}
	}
	if closed == 0 {
		return 0
	}
	return float64(won) / float64(closed)
}
