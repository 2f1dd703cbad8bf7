// simtrader-fetch backfills historical daily bars from Alpaca into the
// Parquet bar store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"simtrader/internal/config"
	"simtrader/internal/marketdata"
	"simtrader/internal/store"
	"simtrader/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file path")
	symbols := flag.String("symbols", "", "comma-separated symbols (default: configured symbol)")
	start := flag.String("start", "", "start date YYYY-MM-DD (default: configured start_date)")
	end := flag.String("end", "", "end date YYYY-MM-DD (default: today)")
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
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("alpaca credentials required (config or APCA_API_KEY_ID / APCA_API_SECRET_KEY)")
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	dataCfg := cfg.Data
	dataCfg.Source = "alpaca"
	if *start != "" {
		dataCfg.StartDate = *start
	}
	if *end != "" {
		dataCfg.EndDate = *end
	}

	source, err := marketdata.FromConfig(dataCfg, cfg.Alpaca, nil)
	if err != nil {
		log.Fatalf("data source: %v", err)
	}

	list := []string{cfg.Data.Symbol}
	if *symbols != "" {
		list = strings.Split(*symbols, ",")
	}

	barStore := store.NewParquetStore(cfg.Storage.DataDir)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for _, symbol := range list {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))

		began := time.Now()
		bars, err := source.Bars(ctx, symbol)
		if err != nil {
			log.Fatalf("fetching %s: %v", symbol, err)
		}
		if len(bars) == 0 {
			logger.Warn("no bars returned", "symbol", symbol)
			continue
		}
		if err := barStore.WriteBars(ctx, bars); err != nil {
			log.Fatalf("writing %s: %v", symbol, err)
		}
		logger.Info("backfilled",
			"symbol", symbol,
			"bars", len(bars),
			"first", bars[0].Timestamp.Format("2006-01-02"),
			"last", bars[len(bars)-1].Timestamp.Format("2006-01-02"),
			"took", time.Since(began).Round(time.Millisecond),
		)
	}
}
