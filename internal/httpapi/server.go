// Package httpapi exposes strategies, stored runs, and on-demand backtests
// over HTTP.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"simtrader/internal/backtest"
	"simtrader/internal/config"
	"simtrader/internal/risk"
	"simtrader/internal/store"
	"simtrader/internal/strategy/builtins"
)

// Server serves the backtest HTTP API over the given stores.
type Server struct {
	cfg  config.Config
	bars store.BarStore
	runs store.RunStore
	log  *slog.Logger
}

// NewServer creates a Server. cfg supplies the defaults a BacktestRequest
// may override.
func NewServer(cfg config.Config, bars store.BarStore, runs store.RunStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, bars: bars, runs: runs, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/strategies", s.handleStrategies)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /api/backtest", s.handleBacktest)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	reg := builtins.NewRegistry(s.cfg.Strategy)
	writeJSON(w, map[string][]string{"strategies": reg.List()})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("listing runs", "error", err)
		writeError(w, http.StatusInternalServerError, "listing runs")
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for i := range runs {
		summaries = append(summaries, summaryFromRun(&runs[i]))
	}
	writeJSON(w, map[string][]RunSummary{"runs": summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Error("loading run", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading run")
		return
	}
	writeJSON(w, detailFromRun(run))
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	start, end, err := s.barRange(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars, err := s.bars.ReadBars(r.Context(), req.Symbol, start, end)
	if err != nil {
		s.log.Error("reading bars", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "reading bars")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "no bars stored for "+req.Symbol)
		return
	}

	strat, err := builtins.FromConfig(s.strategyConfig(req))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	btCfg := s.cfg.Backtest
	if req.InitialCash > 0 {
		btCfg.InitialCash = req.InitialCash
	}
	if req.Commission > 0 {
		btCfg.Commission = req.Commission
	}

	rm := risk.NewManager(s.cfg.Risk.MaxPositionSize, s.cfg.Risk.MaxPortfolioRisk, s.cfg.Risk.StopRiskFraction)
	eng := backtest.New(strat, rm, backtest.NewAnalyzer(s.cfg.Analyzer), btCfg, s.log)

	res, err := eng.Run(r.Context(), bars)
	if err != nil {
		s.log.Error("backtest", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.runs.SaveRun(r.Context(), store.RunFromResult(res))
	if err != nil {
		s.log.Error("saving run", "error", err)
		writeError(w, http.StatusInternalServerError, "saving run")
		return
	}

	writeJSON(w, BacktestResponse{RunID: id, Result: res})
}

// strategyConfig merges request overrides onto the configured defaults.
func (s *Server) strategyConfig(req BacktestRequest) config.StrategyConfig {
	cfg := s.cfg.Strategy
	if req.Strategy != "" {
		cfg.Name = req.Strategy
	}
	if req.ShortWindow > 0 {
		cfg.ShortWindow = req.ShortWindow
	}
	if req.LongWindow > 0 {
		cfg.LongWindow = req.LongWindow
	}
	if req.RSIPeriod > 0 {
		cfg.RSIPeriod = req.RSIPeriod
	}
	if req.RSIOversold > 0 {
		cfg.RSIOversold = req.RSIOversold
	}
	if req.RSIOverbought > 0 {
		cfg.RSIOverbought = req.RSIOverbought
	}
	if req.Lookback > 0 {
		cfg.Lookback = req.Lookback
	}
	if req.Threshold > 0 {
		cfg.Threshold = req.Threshold
	}
	return cfg
}

// barRange parses the optional request date range. Empty bounds widen to
// everything stored.
func (s *Server) barRange(req BacktestRequest) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).UTC()
	end := time.Now().UTC().AddDate(1, 0, 0)

	if req.Start != "" {
		t, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start date, want YYYY-MM-DD")
		}
		start = t
	}
	if req.End != "" {
		t, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end date, want YYYY-MM-DD")
		}
		// Inclusive through the end of the day.
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date before start date")
	}
	return start, end, nil
}
