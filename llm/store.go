package llm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CallRecord captures a single LLM call for cost history and debugging.
type CallRecord struct {
	RequestID        string    `json:"request_id"`
	RunID            string    `json:"run_id,omitempty"`
	Agent            string    `json:"agent"`
	Task             string    `json:"task,omitempty"`
	Model            string    `json:"model,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	FinishReason     string    `json:"finish_reason,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	DurationMs       int64     `json:"duration_ms"`
	Retries          int       `json:"retries"`
	FallbacksUsed    []string  `json:"fallbacks_used,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// CallSummary aggregates calls for a run or for the whole store.
type CallSummary struct {
	Calls            int     `json:"calls"`
	Failures         int     `json:"failures"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// CallStore persists LLM call records in SQLite.
type CallStore struct {
	db *sql.DB
}

// OpenCallStore opens (creating if needed) a call store at the given path.
// The parent directory is created if it does not exist.
func OpenCallStore(path string) (*CallStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create call store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open call store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("call store pragma %q: %w", p, err)
		}
	}

	s := &CallStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("call store migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *CallStore) Close() error {
	return s.db.Close()
}

func (s *CallStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS llm_calls (
			request_id        TEXT PRIMARY KEY,
			run_id            TEXT,
			agent             TEXT NOT NULL,
			task              TEXT,
			model             TEXT,
			provider          TEXT,
			prompt_tokens     INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens      INTEGER NOT NULL DEFAULT 0,
			cost_usd          REAL    NOT NULL DEFAULT 0,
			finish_reason     TEXT,
			started_at        TEXT NOT NULL,
			completed_at      TEXT NOT NULL,
			duration_ms       INTEGER NOT NULL DEFAULT 0,
			retries           INTEGER NOT NULL DEFAULT 0,
			fallbacks_used    TEXT,
			error             TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_calls_run     ON llm_calls(run_id);
		CREATE INDEX IF NOT EXISTS idx_calls_agent   ON llm_calls(agent);
		CREATE INDEX IF NOT EXISTS idx_calls_started ON llm_calls(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Store persists a call record. Existing records with the same request ID
// are replaced, so retried recording is idempotent.
func (s *CallStore) Store(ctx context.Context, r *CallRecord) error {
	fallbacks, err := json.Marshal(r.FallbacksUsed)
	if err != nil {
		return fmt.Errorf("marshal fallbacks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO llm_calls (
			request_id, run_id, agent, task, model, provider,
			prompt_tokens, completion_tokens, total_tokens, cost_usd,
			finish_reason, started_at, completed_at, duration_ms,
			retries, fallbacks_used, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequestID, r.RunID, r.Agent, r.Task, r.Model, r.Provider,
		r.PromptTokens, r.CompletionTokens, r.TotalTokens, r.CostUSD,
		r.FinishReason, r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.CompletedAt.UTC().Format(time.RFC3339Nano), r.DurationMs,
		r.Retries, string(fallbacks), r.Error,
	)
	if err != nil {
		return fmt.Errorf("store call record: %w", err)
	}
	return nil
}

// ListByRun returns all call records for a run in chronological order.
func (s *CallStore) ListByRun(ctx context.Context, runID string) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, run_id, agent, task, model, provider,
		       prompt_tokens, completion_tokens, total_tokens, cost_usd,
		       finish_reason, started_at, completed_at, duration_ms,
		       retries, fallbacks_used, error
		FROM llm_calls
		WHERE run_id = ?
		ORDER BY started_at ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var records []CallRecord
	for rows.Next() {
		r, err := scanCallRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SummarizeRun aggregates token usage and cost for a run. An empty runID
// aggregates the whole store.
func (s *CallStore) SummarizeRun(ctx context.Context, runID string) (*CallSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(total_tokens), 0),
		       COALESCE(SUM(cost_usd), 0)
		FROM llm_calls`
	args := []any{}
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}

	var sum CallSummary
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&sum.Calls, &sum.Failures,
		&sum.PromptTokens, &sum.CompletionTokens, &sum.TotalTokens,
		&sum.CostUSD,
	); err != nil {
		return nil, fmt.Errorf("summarize calls: %w", err)
	}
	return &sum, nil
}

func scanCallRecord(rows *sql.Rows) (CallRecord, error) {
	var r CallRecord
	var startedAt, completedAt, fallbacks string
	if err := rows.Scan(
		&r.RequestID, &r.RunID, &r.Agent, &r.Task, &r.Model, &r.Provider,
		&r.PromptTokens, &r.CompletionTokens, &r.TotalTokens, &r.CostUSD,
		&r.FinishReason, &startedAt, &completedAt, &r.DurationMs,
		&r.Retries, &fallbacks, &r.Error,
	); err != nil {
		return r, fmt.Errorf("scan call record: %w", err)
	}

	r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	r.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)
	if fallbacks != "" && fallbacks != "null" {
		_ = json.Unmarshal([]byte(fallbacks), &r.FallbacksUsed)
	}
	return r, nil
}
