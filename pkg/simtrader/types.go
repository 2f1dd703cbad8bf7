package simtrader

import "time"

// Trade is one executed fill from a run's ledger.
type Trade struct {
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Qty         float64   `json:"qty"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
	Commission  float64   `json:"commission"`
	RealizedPnL float64   `json:"realized_pnl"`
	Closing     bool      `json:"closing"`
}

// EquityPoint is one sample of total portfolio value during a run.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Metrics is the performance summary of a run.
type Metrics struct {
	TotalReturn float64 `json:"total_return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	ValueAtRisk float64 `json:"value_at_risk"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// Result is the full outcome of a backtest run.
type Result struct {
	Symbol        string        `json:"symbol"`
	Strategy      string        `json:"strategy"`
	InitialCash   float64       `json:"initial_cash"`
	FinalValue    float64       `json:"final_value"`
	EquityCurve   []EquityPoint `json:"equity_curve"`
	Trades        []Trade       `json:"trades"`
	Metrics       Metrics       `json:"metrics"`
	Stopped       bool          `json:"stopped,omitempty"`
	Failed        bool          `json:"failed,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// BacktestRequest selects the bars and strategy for a server-side run.
// Zero-valued fields fall back to the server's configured defaults.
type BacktestRequest struct {
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy,omitempty"`

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

// BacktestResponse is the server's reply to a backtest request.
type BacktestResponse struct {
	RunID  int64   `json:"run_id"`
	Result *Result `json:"result"`
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
	FailureReason string  `json:"failure_reason,omitempty"`
	Trades        []Trade `json:"trades"`
}
