/*
Package sqlite persists simulation runs.

PURPOSE:
  Records each simulation's inputs (window, variance, seed), its final
  aggregates, per-account balances, and the optional daily worth series.
  A recorded seed makes any variance run replayable later.

KEY TABLES:
  runs:          One row per simulation (window, seed, final aggregates)
  run_balances:  Final per-account balances, in registration order
  run_snapshots: Daily worth/assets/debt series when recorded

MONEY COLUMNS:
  Stored as TEXT holding decimal strings, never floats. Reading back
  goes through decimal parsing so no precision is lost on the round trip.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers
  don't block and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/simulations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  id, err := store.SaveRun(ctx, result)

SEE ALSO:
  - engine/loop.go: Result, the type being persisted
  - cmd/simulator: Records runs when -db is set
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/networth-engine/engine"
)

// Store persists simulation runs in SQLite.
type Store struct {
	db *sql.DB
}

// New creates a store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		variance INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		worth TEXT NOT NULL,
		assets TEXT NOT NULL,
		debt TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_balances (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		account TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS run_snapshots (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		date TEXT NOT NULL,
		worth TEXT NOT NULL,
		assets TEXT NOT NULL,
		debt TEXT NOT NULL,
		PRIMARY KEY (run_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_run_date
		ON run_snapshots(run_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN RECORDS
// =============================================================================

// RunRecord is one persisted simulation.
type RunRecord struct {
	ID        int64
	CreatedAt time.Time
	Start     engine.Date
	End       engine.Date
	Variance  bool
	Seed      int64
	Worth     decimal.Decimal
	Assets    decimal.Decimal
	Debt      decimal.Decimal
	Balances  []engine.AccountBalance
}

// SaveRun persists a simulation result and returns its run id.
func (s *Store) SaveRun(ctx context.Context, result *engine.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, start_date, end_date, variance, seed, worth, assets, debt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		result.Start.String(), result.End.String(),
		boolToInt(result.Variance), result.Seed,
		result.Worth.String(), result.Assets.String(), result.Debt.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, b := range result.Balances {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_balances (run_id, position, account, value)
			VALUES (?, ?, ?, ?)`,
			runID, i, b.Name, b.Value.String(),
		); err != nil {
			return 0, fmt.Errorf("inserting balance %s: %w", b.Name, err)
		}
	}

	for _, snap := range result.Daily {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_snapshots (run_id, date, worth, assets, debt)
			VALUES (?, ?, ?, ?, ?)`,
			runID, snap.Date.String(),
			snap.Worth.String(), snap.Assets.String(), snap.Debt.String(),
		); err != nil {
			return 0, fmt.Errorf("inserting snapshot %s: %w", snap.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// GetRun loads one run with its final balances.
func (s *Store) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, start_date, end_date, variance, seed, worth, assets, debt
		FROM runs WHERE id = ?`, id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account, value FROM run_balances
		WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("balance for %s: %w", name, err)
		}
		record.Balances = append(record.Balances, engine.AccountBalance{Name: name, Value: v})
	}
	return record, rows.Err()
}

// ListRuns returns all runs, newest first, without balances.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, start_date, end_date, variance, seed, worth, assets, debt
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Snapshots returns the daily series of a run in date order.
func (s *Store) Snapshots(ctx context.Context, runID int64) ([]engine.DailySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, worth, assets, debt FROM run_snapshots
		WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []engine.DailySnapshot
	for rows.Next() {
		var dateStr, worth, assets, debt string
		if err := rows.Scan(&dateStr, &worth, &assets, &debt); err != nil {
			return nil, err
		}
		snap, err := buildSnapshot(dateStr, worth, assets, debt)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		record                     RunRecord
		createdAt, startStr, endStr string
		variance                   int
		worth, assets, debt        string
	)
	if err := row.Scan(&record.ID, &createdAt, &startStr, &endStr,
		&variance, &record.Seed, &worth, &assets, &debt); err != nil {
		return nil, err
	}

	var err error
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if record.Start, err = engine.ParseDate(startStr); err != nil {
		return nil, err
	}
	if record.End, err = engine.ParseDate(endStr); err != nil {
		return nil, err
	}
	record.Variance = variance != 0
	if record.Worth, err = decimal.NewFromString(worth); err != nil {
		return nil, err
	}
	if record.Assets, err = decimal.NewFromString(assets); err != nil {
		return nil, err
	}
	if record.Debt, err = decimal.NewFromString(debt); err != nil {
		return nil, err
	}
	return &record, nil
}

func buildSnapshot(dateStr, worth, assets, debt string) (engine.DailySnapshot, error) {
	var (
		snap engine.DailySnapshot
		err  error
	)
	if snap.Date, err = engine.ParseDate(dateStr); err != nil {
		return snap, err
	}
	if snap.Worth, err = decimal.NewFromString(worth); err != nil {
		return snap, err
	}
	if snap.Assets, err = decimal.NewFromString(assets); err != nil {
		return snap, err
	}
	if snap.Debt, err = decimal.NewFromString(debt); err != nil {
		return snap, err
	}
	return snap, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
