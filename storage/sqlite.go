package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/c360studio/rfpflow/workflow"
)

// SQLiteStore is a file-backed RunStore. One row per run; the snapshot
// itself is stored as JSON, with status and timing lifted into columns
// for listing and inspection with plain SQL.
type SQLiteStore struct {
	db *sql.DB
}

const runSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	score        INTEGER NOT NULL,
	iterations   INTEGER NOT NULL,
	started_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	snapshot     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// OpenSQLiteStore opens (creating if needed) a run store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(runSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put implements RunStore.
func (s *SQLiteStore) Put(ctx context.Context, state *workflow.State) error {
	snapshot, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling run snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, status, score, iterations, started_at, completed_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		state.RunID,
		string(state.Status),
		state.Score,
		state.Iteration,
		state.StartedAt.UTC().Format(time.RFC3339Nano),
		state.CompletedAt.UTC().Format(time.RFC3339Nano),
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("storing run %s: %w", state.RunID, err)
	}
	return nil
}

// Get implements RunStore.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (*workflow.State, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM runs WHERE run_id = ?`, runID,
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	var state workflow.State
	if err := json.Unmarshal([]byte(snapshot), &state); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &state, nil
}

// Delete implements RunStore.
func (s *SQLiteStore) Delete(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("deleting run %s: %w", runID, err)
	}
	return nil
}

// List implements RunStore. IDs are returned in start order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
