package store

import (
	"time"

	"simtrader/internal/backtest"
)

// RunFromResult converts a finished backtest result into its persisted
// form. CreatedAt is stamped by the caller or defaults to now on save.
func RunFromResult(res *backtest.Result) *Run {
	return &Run{
		Symbol:        res.Symbol,
		Strategy:      res.Strategy,
		CreatedAt:     time.Now().UTC(),
		InitialCash:   res.InitialCash,
		FinalValue:    res.FinalValue,
		TotalReturn:   res.Metrics.TotalReturn,
		SharpeRatio:   res.Metrics.SharpeRatio,
		MaxDrawdown:   res.Metrics.MaxDrawdown,
		ValueAtRisk:   res.Metrics.ValueAtRisk,
		WinRate:       res.Metrics.WinRate,
		TotalTrades:   res.Metrics.TotalTrades,
		Stopped:       res.Stopped,
		Failed:        res.Failed,
		FailureReason: res.FailureReason,
		Trades:        res.Trades,
	}
}
