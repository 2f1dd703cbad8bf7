// Package sweep runs many independent backtests concurrently, one portfolio
// per job, and returns their results in job order.
package sweep

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"simtrader/internal/backtest"
	"simtrader/internal/config"
	"simtrader/internal/domain"
	"simtrader/internal/risk"
	"simtrader/internal/strategy"
)

// Job is one parameter combination to backtest. Jobs share nothing: each
// run builds its own portfolio, so bars may be shared across jobs safely.
type Job struct {
	Name     string
	Bars     []domain.Bar
	Strategy strategy.Strategy
	Backtest config.BacktestConfig
	Risk     config.RiskConfig
	Analyzer config.AnalyzerConfig
}

// Outcome pairs a job with its result. Err is set when the run itself was
// rejected (bad bars, empty series); strategy faults land in Result.Failed
// as usual.
type Outcome struct {
	Name   string
	Result *backtest.Result
	Err    error
}

// Runner executes sweep jobs across a bounded pool of goroutines.
type Runner struct {
	workers int
	log     *slog.Logger
}

// NewRunner creates a Runner limited to the given number of concurrent
// jobs. Non-positive workers selects 4.
func NewRunner(workers int, log *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{workers: workers, log: log}
}

// Run executes all jobs and returns one Outcome per job, in the same order
// the jobs were given regardless of completion order. The first context
// cancellation stops scheduling; already-running jobs finish.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	sem := make(chan struct{}, r.workers)

	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Name: job.Name, Err: err}
				return nil
			}

			rm := risk.NewManager(job.Risk.MaxPositionSize, job.Risk.MaxPortfolioRisk, job.Risk.StopRiskFraction)
			eng := backtest.New(job.Strategy, rm, backtest.NewAnalyzer(job.Analyzer), job.Backtest, r.log)

			res, err := eng.Run(gctx, job.Bars)
			outcomes[i] = Outcome{Name: job.Name, Result: res, Err: err}
			return nil
		})
	}

	// Workers only report through outcomes, so Wait cannot fail.
	_ = g.Wait()
	return outcomes
}
