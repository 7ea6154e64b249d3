package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"LynchScreen/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends each run's portfolio to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the screener writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_ts       INTEGER NOT NULL,
			positions    INTEGER,
			achieved_pct REAL,
			target_pct   REAL,
			added        INTEGER,
			removed      INTEGER,
			retained     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(run_ts)`,

		`CREATE TABLE IF NOT EXISTS positions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_ts       INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			bucket       TEXT NOT NULL,
			score        REAL,
			peg          REAL,
			growth_pct   REAL,
			pe           REAL,
			market_cap   REAL,
			confidence   INTEGER,
			attempted    INTEGER,
			disagreement INTEGER,
			weight_pct   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_ts ON positions(run_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_ticker ON positions(ticker)`,

		`CREATE TABLE IF NOT EXISTS portfolio_changes (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_ts INTEGER NOT NULL,
			ticker TEXT NOT NULL,
			action TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_ts ON portfolio_changes(run_ts)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(snap *model.PortfolioSnapshot, delta model.HistoryDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.RunAt.Unix()

	var achieved, target float64
	var count int
	for _, b := range snap.Buckets {
		achieved += b.AchievedPct
		target += b.TargetPct
		count += len(b.Positions)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(run_ts, positions, achieved_pct, target_pct, added, removed, retained)
		VALUES (?,?,?,?,?,?,?)`,
		ts, count, achieved, target,
		len(delta.Added), len(delta.Removed), len(delta.Retained),
	); err != nil {
		return err
	}

	for _, b := range snap.Buckets {
		for _, p := range b.Positions {
			if _, err := tx.Exec(`INSERT INTO positions
				(run_ts, ticker, bucket, score, peg, growth_pct, pe, market_cap,
				 confidence, attempted, disagreement, weight_pct)
				VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
				ts, p.Ticker, string(b.Name), p.Score, p.PEG, p.GrowthPct, p.PE,
				p.MarketCap, p.Confidence, p.Attempted, boolToInt(p.Disagreement), p.WeightPct,
			); err != nil {
				return err
			}
		}
	}

	for action, tickers := range map[string][]string{
		"ADDED": delta.Added, "REMOVED": delta.Removed, "RETAINED": delta.Retained,
	} {
		for _, t := range tickers {
			if _, err := tx.Exec(`INSERT INTO portfolio_changes (run_ts, ticker, action)
				VALUES (?,?,?)`, ts, t, action); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
