// simtrader-sweep backtests a grid of SMA window pairs concurrently and
// prints a comparison table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"simtrader/internal/config"
	"simtrader/internal/marketdata"
	"simtrader/internal/store"
	"simtrader/internal/strategy/builtins"
	"simtrader/internal/sweep"
	"simtrader/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path")
	shorts := flag.String("short", "5,10,20", "comma-separated short windows")
	longs := flag.String("long", "30,50", "comma-separated long windows")
	workers := flag.Int("workers", 4, "concurrent backtests")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = "config/simtrader.yaml"
		if p := os.Getenv("SIMTRADER_CONFIG"); p != "" {
			cfgPath = p
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger("warn", cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	barStore := store.NewParquetStore(cfg.Storage.DataDir)
	source, err := marketdata.FromConfig(cfg.Data, cfg.Alpaca, barStore)
	if err != nil {
		log.Fatalf("data source: %v", err)
	}
	bars, err := source.Bars(ctx, cfg.Data.Symbol)
	if err != nil {
		log.Fatalf("loading bars: %v", err)
	}

	var jobs []sweep.Job
	for _, short := range parseInts(*shorts) {
		for _, long := range parseInts(*longs) {
			if short >= long {
				continue
			}
			jobs = append(jobs, sweep.Job{
				Name:     fmt.Sprintf("sma-cross %d/%d %s", short, long, cfg.Data.Symbol),
				Bars:     bars,
				Strategy: builtins.NewSMACross(short, long),
				Backtest: cfg.Backtest,
				Risk:     cfg.Risk,
				Analyzer: cfg.Analyzer,
			})
		}
	}
	if len(jobs) == 0 {
		log.Fatal("no valid window pairs (short must be below long)")
	}

	outcomes := sweep.NewRunner(*workers, logger).Run(ctx, jobs)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tFINAL VALUE\tRETURN\tSHARPE\tMAX DD\tTRADES")
	for _, out := range outcomes {
		if out.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\t\n", out.Name, out.Err)
			continue
		}
		m := out.Result.Metrics
		fmt.Fprintf(w, "%s\t$%.2f\t%.2f%%\t%.3f\t%.2f%%\t%d\n",
			out.Name, out.Result.FinalValue, m.TotalReturn*100, m.SharpeRatio, m.MaxDrawdown*100, m.TotalTrades)
	}
	w.Flush()
}

func parseInts(csv string) []int {
	var out []int
	for _, field := range strings.Split(csv, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			log.Fatalf("invalid window %q", field)
		}
		out = append(out, n)
	}
	return out
}
