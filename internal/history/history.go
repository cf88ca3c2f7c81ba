// Package history persists completed sweeps in a local SQLite database so
// past benchmark runs can be listed and compared after the fact.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/dbsmedya/minebench/internal/results"
	"github.com/dbsmedya/minebench/internal/sweep"
)

// ErrSweepNotFound is returned when a sweep ID is not present in the store.
var ErrSweepNotFound = errors.New("sweep not found")

// SweepSummary describes one recorded sweep without its per-run rows.
type SweepSummary struct {
	ID          string
	Dataset     string
	OutputDir   string
	StartedAt   time.Time
	CompletedAt time.Time
	Success     bool
	Runs        int
}

// Store records sweeps and their run outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the history database at the given path and
// initializes the schema. The connection is restricted to a single writer;
// WAL mode keeps concurrent readers from blocking it.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.path = path

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return store, nil
}

// NewStore wraps an existing database handle. The caller is responsible for
// the schema; Open is the usual entry point.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &Store{db: db}, nil
}

// Path returns the database file path, or "" when the store wraps an
// externally opened handle.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initSchema creates the sweeps and runs tables if they do not exist.
// Timestamps are stored as Unix nanoseconds so they round-trip exactly.
func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sweeps (
			id          TEXT PRIMARY KEY,
			dataset     TEXT NOT NULL,
			output_dir  TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			success     INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			sweep_id        TEXT NOT NULL REFERENCES sweeps(id),
			algorithm       TEXT NOT NULL,
			support_pct     REAL NOT NULL,
			status          TEXT NOT NULL,
			runtime_seconds REAL NOT NULL,
			output          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_sweep ON runs(sweep_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sweeps_started ON sweeps(started_at)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// RecordSweep stores a completed sweep and all of its run records in a single
// transaction. It returns the generated sweep ID.
func (s *Store) RecordSweep(ctx context.Context, res *sweep.SweepResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("sweep result is nil")
	}
	if res.Table == nil {
		return "", fmt.Errorf("sweep result has no table")
	}

	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Roll back unless the transaction was committed below.
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sweeps (id, dataset, output_dir, started_at, finished_at, success) VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		res.Dataset,
		res.OutputDir,
		res.StartedAt.UnixNano(),
		res.CompletedAt.UnixNano(),
		res.Success,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert sweep: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (sweep_id, algorithm, support_pct, status, runtime_seconds, output) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("failed to prepare run insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range res.Table.Records() {
		_, err := stmt.ExecContext(ctx,
			id,
			rec.Algorithm,
			rec.Support,
			string(rec.Status),
			rec.Runtime.Seconds(),
			rec.Output,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert run for %s: %w", rec.Algorithm, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return id, nil
}

// ListSweeps returns recorded sweeps, newest first. A non-positive limit
// returns all of them.
func (s *Store) ListSweeps(ctx context.Context, limit int) ([]SweepSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as "no limit"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.dataset, s.output_dir, s.started_at, s.finished_at, s.success, COUNT(r.rowid)
		 FROM sweeps s
		 LEFT JOIN runs r ON r.sweep_id = s.id
		 GROUP BY s.id
		 ORDER BY s.started_at DESC, s.id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []SweepSummary
	for rows.Next() {
		var (
			sum                 SweepSummary
			startedNS, finishNS int64
		)
		if err := rows.Scan(&sum.ID, &sum.Dataset, &sum.OutputDir, &startedNS, &finishNS, &sum.Success, &sum.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan sweep row: %w", err)
		}
		sum.StartedAt = time.Unix(0, startedNS).UTC()
		sum.CompletedAt = time.Unix(0, finishNS).UTC()
		sweeps = append(sweeps, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweeps: %w", err)
	}

	return sweeps, nil
}

// Runs returns the recorded run table for one sweep, in execution order.
func (s *Store) Runs(ctx context.Context, sweepID string) (*results.Table, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweeps WHERE id = ?`, sweepID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sweep: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSweepNotFound, sweepID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT algorithm, support_pct, status, runtime_seconds, output
		 FROM runs WHERE sweep_id = ? ORDER BY rowid`,
		sweepID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	table := results.NewTable()
	for rows.Next() {
		var (
			rec    results.RunRecord
			status string
			secs   float64
		)
		if err := rows.Scan(&rec.Algorithm, &rec.Support, &status, &secs, &rec.Output); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.Status, err = results.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("sweep %s holds an invalid run: %w", sweepID, err)
		}
		rec.Runtime = time.Duration(math.Round(secs * float64(time.Second)))
		table.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return table, nil
}

// PruneBefore removes sweeps that started before the cutoff, along with their
// runs. It returns the number of sweeps removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	ns := cutoff.UnixNano()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM runs WHERE sweep_id IN (SELECT id FROM sweeps WHERE started_at < ?)`, ns,
	); err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sweeps WHERE started_at < ?`, ns)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sweeps: %w", err)
	}
	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned sweeps: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return pruned, nil
}
