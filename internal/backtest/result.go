package backtest

import (
	"time"

	"simtrader/internal/domain"
)

// EquityPoint is one sample of total portfolio value, taken after all
// processing for a bar has completed.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Metrics holds the performance summary computed over a finished run.
type Metrics struct {
	TotalReturn float64 `json:"total_return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	ValueAtRisk float64 `json:"value_at_risk"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

// Result is the complete outcome of one backtest run. A Result with Failed
// set is partial: it covers every bar up to the fault, and FailureReason
// says what went wrong. Stopped marks a run terminated early by the
// drawdown stop condition.
type Result struct {
	Symbol      string         `json:"symbol"`
	Strategy    string         `json:"strategy"`
	InitialCash float64        `json:"initial_cash"`
	FinalValue  float64        `json:"final_value"`
	EquityCurve []EquityPoint  `json:"equity_curve"`
	Trades      []domain.Trade `json:"trades"`
	Metrics     Metrics        `json:"metrics"`

	Stopped       bool   `json:"stopped,omitempty"`
	Failed        bool   `json:"failed,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}
