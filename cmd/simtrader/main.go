package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"simtrader/internal/backtest"
	"simtrader/internal/config"
	"simtrader/internal/domain"
	"simtrader/internal/marketdata"
	"simtrader/internal/portfolio"
	"simtrader/internal/report"
	"simtrader/internal/risk"
	"simtrader/internal/store"
	"simtrader/internal/strategy/builtins"
	"simtrader/internal/util"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: simtrader <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run        Run a backtest from config and print the report\n")
		fmt.Fprintf(os.Stderr, "  trade      Manual buy/sell session against a fresh portfolio\n")
		fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])

	case "trade":
		cmdTrade(os.Args[2:])

	case "version":
		fmt.Printf("simtrader %s\n", version)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = "config/simtrader.yaml"
		if p := os.Getenv("SIMTRADER_CONFIG"); p != "" {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	symbol := fs.String("symbol", "", "override the configured symbol")
	stratName := fs.String("strategy", "", "override the configured strategy")
	noSave := fs.Bool("no-save", false, "skip persisting the run to SQLite")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	if *symbol != "" {
		cfg.Data.Symbol = *symbol
	}
	if *stratName != "" {
		cfg.Strategy.Name = *stratName
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

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
	logger.Info("bars loaded", "source", source.Name(), "symbol", cfg.Data.Symbol, "count", len(bars))

	strat, err := builtins.FromConfig(cfg.Strategy)
	if err != nil {
		log.Fatalf("strategy: %v", err)
	}

	rm := risk.NewManager(cfg.Risk.MaxPositionSize, cfg.Risk.MaxPortfolioRisk, cfg.Risk.StopRiskFraction)
	eng := backtest.New(strat, rm, backtest.NewAnalyzer(cfg.Analyzer), cfg.Backtest, logger)

	res, err := eng.Run(ctx, bars)
	if err != nil {
		log.Fatalf("backtest: %v", err)
	}

	if err := report.Write(os.Stdout, res, cfg.Analyzer.VaRConfidence); err != nil {
		log.Fatalf("writing report: %v", err)
	}

	if !*noSave {
		runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening run store: %v", err)
		}
		defer runs.Close()

		id, err := runs.SaveRun(ctx, store.RunFromResult(res))
		if err != nil {
			log.Fatalf("saving run: %v", err)
		}
		logger.Info("run saved", "id", id, "path", cfg.Storage.SQLitePath)
	}
}

// cmdTrade is an interactive session against a standing portfolio. Fills
// go through the same execution path backtests use.
func cmdTrade(args []string) {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	cash := fs.Float64("cash", 100000, "starting cash")
	commission := fs.Float64("commission", 0, "flat commission per fill")
	fs.Parse(args)

	p := portfolio.New(*cash, *commission)
	fmt.Printf("simtrader %s manual session, cash $%.2f\n", version, p.Cash())
	fmt.Println("commands: buy SYMBOL QTY PRICE | sell SYMBOL QTY PRICE | pos | cash | trades | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "buy", "sell":
			handleManualOrder(p, fields)

		case "pos":
			snap := p.Snapshot()
			if len(snap.Positions) == 0 {
				fmt.Println("no open positions")
				continue
			}
			for _, line := range positionLines(snap) {
				fmt.Println(line)
			}

		case "cash":
			fmt.Printf("cash $%.2f\n", p.Cash())

		case "trades":
			for _, tr := range p.Trades() {
				line := fmt.Sprintf("%s %s %.0f @ $%.2f", tr.Timestamp.Format("15:04:05"), tr.Side, tr.Qty, tr.Price)
				if tr.Closing {
					line += fmt.Sprintf("  pnl $%.2f", tr.RealizedPnL)
				}
				fmt.Println(line)
			}

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

// positionLines renders open positions sorted by symbol so the listing
// is stable across sessions.
func positionLines(snap portfolio.Snapshot) []string {
	symbols := make([]string, 0, len(snap.Positions))
	for sym := range snap.Positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	lines := make([]string, len(symbols))
	for i, sym := range symbols {
		pos := snap.Positions[sym]
		lines[i] = fmt.Sprintf("%s  qty %.0f  avg cost $%.2f", pos.Symbol, pos.Qty, pos.AvgCost)
	}
	return lines
}

func manualOrder(verb, symbol string, qty, price float64) domain.Order {
	side := domain.OrderSideBuy
	if verb == "sell" {
		side = domain.OrderSideSell
	}
	return domain.Order{Symbol: symbol, Side: side, Qty: qty, RefPrice: price}
}

func handleManualOrder(p *portfolio.Portfolio, fields []string) {
	if len(fields) != 4 {
		fmt.Printf("usage: %s SYMBOL QTY PRICE\n", fields[0])
		return
	}
	qty, err1 := strconv.ParseFloat(fields[2], 64)
	price, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || qty <= 0 || price <= 0 {
		fmt.Println("qty and price must be positive numbers")
		return
	}

	order := manualOrder(fields[0], strings.ToUpper(fields[1]), qty, price)
	trade, err := p.Execute(order, price, time.Now().UTC())
	if err != nil {
		fmt.Printf("rejected: %v\n", err)
		return
	}
	if trade.Closing {
		fmt.Printf("filled %s %.0f %s @ $%.2f, realized $%.2f, cash $%.2f\n",
			trade.Side, trade.Qty, trade.Symbol, trade.Price, trade.RealizedPnL, p.Cash())
	} else {
		fmt.Printf("filled %s %.0f %s @ $%.2f, cash $%.2f\n",
			trade.Side, trade.Qty, trade.Symbol, trade.Price, p.Cash())
	}
}
