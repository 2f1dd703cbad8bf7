package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"simtrader/internal/domain"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol         TEXT NOT NULL,
	strategy       TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	initial_cash   REAL NOT NULL,
	final_value    REAL NOT NULL,
	total_return   REAL NOT NULL,
	sharpe_ratio   REAL NOT NULL,
	max_drawdown   REAL NOT NULL,
	value_at_risk  REAL NOT NULL,
	win_rate       REAL NOT NULL,
	total_trades   INTEGER NOT NULL,
	stopped        INTEGER NOT NULL DEFAULT 0,
	failed         INTEGER NOT NULL DEFAULT 0,
	failure_reason TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
	run_id       INTEGER NOT NULL REFERENCES runs(id),
	seq          INTEGER NOT NULL,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	qty          REAL NOT NULL,
	price        REAL NOT NULL,
	timestamp    INTEGER NOT NULL,
	commission   REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	closing      INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its trade ledger in one transaction and
// returns the assigned run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			symbol, strategy, created_at, initial_cash, final_value,
			total_return, sharpe_ratio, max_drawdown, value_at_risk,
			win_rate, total_trades, stopped, failed, failure_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Symbol, run.Strategy, createdAt.UnixMilli(), run.InitialCash,
		run.FinalValue, run.TotalReturn, run.SharpeRatio, run.MaxDrawdown,
		run.ValueAtRisk, run.WinRate, run.TotalTrades,
		boolToInt(run.Stopped), boolToInt(run.Failed), run.FailureReason,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for seq, tr := range run.Trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trades (
				run_id, seq, symbol, side, qty, price, timestamp,
				commission, realized_pnl, closing
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, seq, tr.Symbol, string(tr.Side), tr.Qty, tr.Price,
			tr.Timestamp.UnixMilli(), tr.Commission, tr.RealizedPnL,
			boolToInt(tr.Closing),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting trade %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetRun retrieves a run by ID, including its trade ledger in execution
// order. It returns sql.ErrNoRows when the run does not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, strategy, created_at, initial_cash, final_value,
		       total_return, sharpe_ratio, max_drawdown, value_at_risk,
		       win_rate, total_trades, stopped, failed, failure_reason
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, side, qty, price, timestamp, commission, realized_pnl, closing
		FROM trades WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tr domain.Trade
		var side string
		var ts int64
		var closing int
		if err := rows.Scan(&tr.Symbol, &side, &tr.Qty, &tr.Price, &ts,
			&tr.Commission, &tr.RealizedPnL, &closing); err != nil {
			return nil, err
		}
		tr.Side = domain.OrderSide(side)
		tr.Timestamp = time.UnixMilli(ts).UTC()
		tr.Closing = closing != 0
		run.Trades = append(run.Trades, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns run summaries without trade ledgers, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, symbol, strategy, created_at, initial_cash, final_value,
		       total_return, sharpe_ratio, max_drawdown, value_at_risk,
		       win_rate, total_trades, stopped, failed, failure_reason
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt int64
	var stopped, failed int
	err := row.Scan(&run.ID, &run.Symbol, &run.Strategy, &createdAt,
		&run.InitialCash, &run.FinalValue, &run.TotalReturn, &run.SharpeRatio,
		&run.MaxDrawdown, &run.ValueAtRisk, &run.WinRate, &run.TotalTrades,
		&stopped, &failed, &run.FailureReason)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	run.Stopped = stopped != 0
	run.Failed = failed != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
