// Package config loads, defaults, and validates the simtrader YAML
// configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the simtrader system.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Data     DataConfig     `yaml:"data"`
	Alpaca   AlpacaConfig   `yaml:"alpaca"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BacktestConfig holds the simulation parameters of a single run.
type BacktestConfig struct {
	InitialCash float64 `yaml:"initial_cash"`
	Commission  float64 `yaml:"commission"` // flat per-fill commission

	// MaxDrawdownStop terminates a run early when the running drawdown
	// exceeds this fraction. Zero disables the stop condition.
	MaxDrawdownStop float64 `yaml:"max_drawdown_stop"`
}

// StrategyConfig selects and parameterises a built-in strategy.
type StrategyConfig struct {
	Name string `yaml:"name"`

	// sma-cross
	ShortWindow int `yaml:"short_window"`
	LongWindow  int `yaml:"long_window"`

	// rsi
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`

	// momentum
	Lookback  int     `yaml:"lookback"`
	Threshold float64 `yaml:"threshold"`
}

// RiskConfig defines position sizing limits.
type RiskConfig struct {
	MaxPositionSize  float64 `yaml:"max_position_size"`  // fraction of equity per position
	MaxPortfolioRisk float64 `yaml:"max_portfolio_risk"` // fraction of equity at risk per trade
	StopRiskFraction float64 `yaml:"stop_risk_fraction"` // assumed stop distance as a fraction of entry
}

// AnalyzerConfig defines the numeric conventions for performance metrics.
type AnalyzerConfig struct {
	VaRConfidence  float64 `yaml:"var_confidence"`
	PeriodsPerYear float64 `yaml:"periods_per_year"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"` // annual
}

// DataConfig selects the market data source for a run.
type DataConfig struct {
	Source string `yaml:"source"` // synthetic | csv | parquet | alpaca
	Symbol string `yaml:"symbol"`

	// synthetic
	Bars       int     `yaml:"bars"`
	StartPrice float64 `yaml:"start_price"`
	Volatility float64 `yaml:"volatility"`
	Seed       int64   `yaml:"seed"`
	StartDate  string  `yaml:"start_date"` // YYYY-MM-DD

	// csv
	CSVPath string `yaml:"csv_path"`

	// parquet / alpaca
	EndDate string `yaml:"end_date"` // YYYY-MM-DD
}

// AlpacaConfig holds credentials and endpoints for the Alpaca data API.
type AlpacaConfig struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	DataURL         string `yaml:"data_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	RateLimitBurst  int    `yaml:"rate_limit_burst"`
}

// StorageConfig holds paths for data persistence.
type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ServerConfig holds network listener configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns a Config populated with working defaults: a 252-bar
// synthetic AAPL series traded by the 10/30 SMA crossover strategy.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCash: 100000,
			Commission:  0,
		},
		Strategy: StrategyConfig{
			Name:          "sma-cross",
			ShortWindow:   10,
			LongWindow:    30,
			RSIPeriod:     14,
			RSIOversold:   30,
			RSIOverbought: 70,
			Lookback:      14,
			Threshold:     0.02,
		},
		Risk: RiskConfig{
			MaxPositionSize:  0.10,
			MaxPortfolioRisk: 0.02,
			StopRiskFraction: 0.05,
		},
		Analyzer: AnalyzerConfig{
			VaRConfidence:  0.05,
			PeriodsPerYear: 252,
			RiskFreeRate:   0.02,
		},
		Data: DataConfig{
			Source:     "synthetic",
			Symbol:     "AAPL",
			Bars:       252,
			StartPrice: 100,
			Volatility: 0.02,
			Seed:       42,
			StartDate:  "2024-01-02",
		},
		Alpaca: AlpacaConfig{
			RateLimitPerMin: 200,
			RateLimitBurst:  5,
		},
		Storage: StorageConfig{
			DataDir:    "data",
			SQLitePath: "simtrader.db",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, applies environment variable overrides, and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SIMTRADER_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Data.Seed = seed
		}
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// ValidationError reports a malformed configuration value. Validation runs
// before any simulation step, so a bad configuration never reaches the
// engine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration against the documented constraints and
// returns a *ValidationError describing the first violation.
func (c *Config) Validate() error {
	if c.Backtest.InitialCash <= 0 {
		return &ValidationError{"backtest.initial_cash", "must be positive"}
	}
	if c.Backtest.Commission < 0 {
		return &ValidationError{"backtest.commission", "must not be negative"}
	}
	if c.Backtest.MaxDrawdownStop < 0 || c.Backtest.MaxDrawdownStop >= 1 {
		return &ValidationError{"backtest.max_drawdown_stop", "must be in [0, 1)"}
	}

	switch c.Strategy.Name {
	case "sma-cross":
		if c.Strategy.ShortWindow < 1 {
			return &ValidationError{"strategy.short_window", "must be at least 1"}
		}
		if c.Strategy.LongWindow <= c.Strategy.ShortWindow {
			return &ValidationError{"strategy.long_window", "must exceed short_window"}
		}
	case "rsi":
		if c.Strategy.RSIPeriod < 1 {
			return &ValidationError{"strategy.rsi_period", "must be at least 1"}
		}
		if c.Strategy.RSIOversold >= c.Strategy.RSIOverbought {
			return &ValidationError{"strategy.rsi_oversold", "must be below rsi_overbought"}
		}
	case "momentum":
		if c.Strategy.Lookback < 1 {
			return &ValidationError{"strategy.lookback", "must be at least 1"}
		}
		if c.Strategy.Threshold <= 0 {
			return &ValidationError{"strategy.threshold", "must be positive"}
		}
	default:
		return &ValidationError{"strategy.name", fmt.Sprintf("unknown strategy %q", c.Strategy.Name)}
	}

	if c.Risk.MaxPositionSize <= 0 || c.Risk.MaxPositionSize > 1 {
		return &ValidationError{"risk.max_position_size", "must be in (0, 1]"}
	}
	if c.Risk.MaxPortfolioRisk <= 0 || c.Risk.MaxPortfolioRisk > 1 {
		return &ValidationError{"risk.max_portfolio_risk", "must be in (0, 1]"}
	}
	if c.Risk.StopRiskFraction <= 0 || c.Risk.StopRiskFraction > 1 {
		return &ValidationError{"risk.stop_risk_fraction", "must be in (0, 1]"}
	}

	if c.Analyzer.VaRConfidence <= 0 || c.Analyzer.VaRConfidence >= 1 {
		return &ValidationError{"analyzer.var_confidence", "must be in (0, 1)"}
	}
	if c.Analyzer.PeriodsPerYear <= 0 {
		return &ValidationError{"analyzer.periods_per_year", "must be positive"}
	}

	switch c.Data.Source {
	case "synthetic":
		if c.Data.Bars < 1 {
			return &ValidationError{"data.bars", "must be at least 1"}
		}
		if c.Data.StartPrice <= 0 {
			return &ValidationError{"data.start_price", "must be positive"}
		}
		if c.Data.Volatility < 0 {
			return &ValidationError{"data.volatility", "must not be negative"}
		}
	case "csv":
		if c.Data.CSVPath == "" {
			return &ValidationError{"data.csv_path", "required for csv source"}
		}
	case "parquet", "alpaca":
		// Paths and credentials are checked where the source is constructed.
	default:
		return &ValidationError{"data.source", fmt.Sprintf("unknown source %q", c.Data.Source)}
	}
	if c.Data.Symbol == "" {
		return &ValidationError{"data.symbol", "required"}
	}

	return nil
}
