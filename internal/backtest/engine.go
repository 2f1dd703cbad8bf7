// Package backtest drives a strategy over historical bars against a
// simulated portfolio and computes performance metrics for the run.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"simtrader/internal/config"
	"simtrader/internal/domain"
	"simtrader/internal/portfolio"
	"simtrader/internal/risk"
	"simtrader/internal/strategy"
)

// ErrNoBars is returned when a run is requested over an empty bar series.
var ErrNoBars = errors.New("backtest: no bars")

// Engine runs one strategy over one bar series. Each Run builds a fresh
// portfolio, so an Engine may be reused across runs.
//
// At every bar the strategy sees only the series up to and including that
// bar. Sizing and fills both use the bar's close. The engine touches no
// wall clock and no shared mutable state, so a run is a pure function of
// its inputs.
type Engine struct {
	strategy strategy.Strategy
	risk     *risk.Manager
	analyzer *Analyzer
	cfg      config.BacktestConfig
	log      *slog.Logger
}

// New creates an Engine wired with the given collaborators.
func New(strat strategy.Strategy, rm *risk.Manager, analyzer *Analyzer, cfg config.BacktestConfig, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		strategy: strat,
		risk:     rm,
		analyzer: analyzer,
		cfg:      cfg,
		log:      log,
	}
}

// Run replays bars through the strategy and returns the run's Result.
//
// Bars must be strictly increasing in timestamp; a violation is fatal and
// yields no result. A strategy fault mid-run yields a partial Result with
// the Failed flag set rather than an error: everything up to the faulting
// bar is preserved. Context cancellation between bars aborts the run.
func (e *Engine) Run(ctx context.Context, bars []domain.Bar) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	if err := domain.ValidateBars(bars); err != nil {
		return nil, err
	}

	symbol := bars[0].Symbol
	p := portfolio.New(e.cfg.InitialCash, e.cfg.Commission)
	warmup := e.strategy.WarmupPeriod()

	res := &Result{
		Symbol:      symbol,
		Strategy:    e.strategy.Name(),
		InitialCash: e.cfg.InitialCash,
		EquityCurve: make([]EquityPoint, 0, len(bars)),
	}

	e.log.Info("backtest starting",
		"symbol", symbol,
		"strategy", res.Strategy,
		"bars", len(bars),
		"initial_cash", e.cfg.InitialCash,
	)

	peak := e.cfg.InitialCash

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		marks := map[string]float64{symbol: bar.Close}

		if i+1 >= warmup {
			history := bars[: i+1 : i+1]
			sig, err := e.strategy.OnBar(history)
			if err == nil {
				err = sig.Validate()
			}
			if err != nil {
				res.FinalValue = p.TotalValue(marks)
				return e.fail(res, p, fmt.Errorf("strategy %s at bar %d (%s): %w",
					res.Strategy, i, bar.Timestamp.Format("2006-01-02"), err)), nil
			}

			order := e.risk.SizeOrder(sig, p.Snapshot(), bar.Close)
			if !order.IsZero() {
				trade, err := p.Execute(order, bar.Close, bar.Timestamp)
				if err != nil {
					// Rejections are part of a normal run.
					e.log.Warn("order rejected", "symbol", symbol, "bar", i, "error", err)
				} else {
					e.log.Debug("fill",
						"side", trade.Side,
						"qty", trade.Qty,
						"price", trade.Price,
						"realized_pnl", trade.RealizedPnL,
					)
				}
			}
		}

		value := p.TotalValue(marks)
		res.EquityCurve = append(res.EquityCurve, EquityPoint{Timestamp: bar.Timestamp, Value: value})

		if value > peak {
			peak = value
		}
		if e.cfg.MaxDrawdownStop > 0 && peak > 0 {
			if dd := (peak - value) / peak; dd >= e.cfg.MaxDrawdownStop {
				e.log.Warn("drawdown stop hit",
					"bar", i,
					"drawdown", dd,
					"limit", e.cfg.MaxDrawdownStop,
				)
				res.Stopped = true
				break
			}
		}
	}

	res.Trades = p.Trades()
	res.FinalValue = res.EquityCurve[len(res.EquityCurve)-1].Value
	res.Metrics = e.analyzer.Analyze(res.InitialCash, res.EquityCurve, res.Trades)

	e.log.Info("backtest finished",
		"final_value", res.FinalValue,
		"total_return", res.Metrics.TotalReturn,
		"trades", res.Metrics.TotalTrades,
		"stopped", res.Stopped,
	)
	return res, nil
}

// fail finalizes a partial result after a strategy fault.
func (e *Engine) fail(res *Result, p *portfolio.Portfolio, cause error) *Result {
	res.Failed = true
	res.FailureReason = cause.Error()
	res.Trades = p.Trades()
	res.Metrics = e.analyzer.Analyze(res.InitialCash, res.EquityCurve, res.Trades)
	e.log.Error("backtest failed", "error", cause)
	return res
}
