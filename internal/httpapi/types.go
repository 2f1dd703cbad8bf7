package httpapi

import (
	"time"

	"simtrader/internal/backtest"
	"simtrader/internal/domain"
	"simtrader/internal/store"
)

// BacktestRequest selects the bars and strategy for an API-triggered run.
// Zero-valued fields fall back to the server's configured defaults.
type BacktestRequest struct {
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy"`

	// Bar range, YYYY-MM-DD. Empty means everything stored.
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	InitialCash float64 `json:"initial_cash,omitempty"`
	Commission  float64 `json:"commission,omitempty"`

	// Strategy parameter overrides.
	ShortWindow   int     `json:"short_window,omitempty"`
	LongWindow    int     `json:"long_window,omitempty"`
	RSIPeriod     int     `json:"rsi_period,omitempty"`
	RSIOversold   float64 `json:"rsi_oversold,omitempty"`
	RSIOverbought float64 `json:"rsi_overbought,omitempty"`
	Lookback      int     `json:"lookback,omitempty"`
	Threshold     float64 `json:"threshold,omitempty"`
}

// BacktestResponse returns the stored run ID alongside the full result.
type BacktestResponse struct {
	RunID  int64            `json:"run_id"`
	Result *backtest.Result `json:"result"`
}

// RunSummary is the list form of a stored run, without its trade ledger.
type RunSummary struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	Strategy    string    `json:"strategy"`
	CreatedAt   time.Time `json:"created_at"`
	InitialCash float64   `json:"initial_cash"`
	FinalValue  float64   `json:"final_value"`
	TotalReturn float64   `json:"total_return"`
	SharpeRatio float64   `json:"sharpe_ratio"`
	MaxDrawdown float64   `json:"max_drawdown"`
	ValueAtRisk float64   `json:"value_at_risk"`
	WinRate     float64   `json:"win_rate"`
	TotalTrades int       `json:"total_trades"`
	Stopped     bool      `json:"stopped,omitempty"`
	Failed      bool      `json:"failed,omitempty"`
}

// RunDetail is a stored run with its trade ledger.
type RunDetail struct {
	RunSummary
	FailureReason string         `json:"failure_reason,omitempty"`
	Trades        []domain.Trade `json:"trades"`
}

func summaryFromRun(run *store.Run) RunSummary {
	return RunSummary{
		ID:          run.ID,
		Symbol:      run.Symbol,
		Strategy:    run.Strategy,
		CreatedAt:   run.CreatedAt,
		InitialCash: run.InitialCash,
		FinalValue:  run.FinalValue,
		TotalReturn: run.TotalReturn,
		SharpeRatio: run.SharpeRatio,
		MaxDrawdown: run.MaxDrawdown,
		ValueAtRisk: run.ValueAtRisk,
		WinRate:     run.WinRate,
		TotalTrades: run.TotalTrades,
		Stopped:     run.Stopped,
		Failed:      run.Failed,
	}
}

func detailFromRun(run *store.Run) RunDetail {
	return RunDetail{
		RunSummary:    summaryFromRun(run),
		FailureReason: run.FailureReason,
		Trades:        run.Trades,
	}
}
