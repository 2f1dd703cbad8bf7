// simtrader-gen generates synthetic daily bars and writes them to the
// Parquet bar store, where backtests and the API server can read them.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"simtrader/internal/config"
	"simtrader/internal/marketdata"
	"simtrader/internal/store"
	"simtrader/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path")
	symbols := flag.String("symbols", "", "comma-separated symbols (default: configured symbol)")
	bars := flag.Int("bars", 0, "bars per symbol (default: configured count)")
	seed := flag.Int64("seed", 0, "base RNG seed (default: configured seed); each symbol offsets by one")
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

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	list := []string{cfg.Data.Symbol}
	if *symbols != "" {
		list = strings.Split(*symbols, ",")
	}
	count := cfg.Data.Bars
	if *bars > 0 {
		count = *bars
	}
	baseSeed := cfg.Data.Seed
	if *seed != 0 {
		baseSeed = *seed
	}

	var start time.Time
	if cfg.Data.StartDate != "" {
		start, err = time.Parse("2006-01-02", cfg.Data.StartDate)
		if err != nil {
			log.Fatalf("invalid start_date: %v", err)
		}
	}

	barStore := store.NewParquetStore(cfg.Storage.DataDir)
	ctx := context.Background()

	for i, symbol := range list {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		gen := marketdata.NewGenerator(marketdata.GeneratorOpts{
			Bars:       count,
			StartPrice: cfg.Data.StartPrice,
			Volatility: cfg.Data.Volatility,
			Start:      start,
			Seed:       baseSeed + int64(i),
		})

		series, err := gen.Bars(ctx, symbol)
		if err != nil {
			log.Fatalf("generating %s: %v", symbol, err)
		}
		if err := barStore.WriteBars(ctx, series); err != nil {
			log.Fatalf("writing %s: %v", symbol, err)
		}
		logger.Info("bars written",
			"symbol", symbol,
			"count", len(series),
			"seed", baseSeed+int64(i),
			"data_dir", cfg.Storage.DataDir,
		)
	}
}
