// Package journal persists run history in a small SQLite database so that
// past pipeline runs and their per-mediaset outcomes can be reviewed later.
// Live state stays in memory; the journal is written after the fact.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; an old database must be
// deleted, the journal holds no irreplaceable state.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// journal version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Outcome kinds.
const (
	KindTranscode   = "transcode"
	KindIntegration = "integration"
	KindAssembly    = "assembly"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Command    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Success    *bool
	Summary    string
}

// Outcome is one per-mediaset result inside a run.
type Outcome struct {
	RunID     string
	Mediaset  string
	Kind      string
	Result    string
	Detail    string
	CreatedAt time.Time
}

// Store is the journal database handle.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the journal database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// BeginRun records the start of a pipeline invocation.
func (s *Store) BeginRun(ctx context.Context, runID, command string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, command, started_at) VALUES (?, ?, ?)",
		runID, command, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its success flag and summary line.
func (s *Store) FinishRun(ctx context.Context, runID string, success bool, summary string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, success = ?, summary = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), boolToInt(success), summary, runID)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("finish run %s: unknown run", runID)
	}
	return nil
}

// RecordOutcome appends one per-mediaset result to a run.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	created := outcome.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO outcomes (run_id, mediaset, kind, result, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		outcome.RunID, outcome.Mediaset, outcome.Kind, outcome.Result, outcome.Detail,
		created.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, at most limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, command, started_at, finished_at, success, summary FROM runs ORDER BY started_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
			success    sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Command, &startedAt, &finishedAt, &success, &run.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			run.StartedAt = ts.Local()
		}
		if finishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
				local := ts.Local()
				run.FinishedAt = &local
			}
		}
		if success.Valid {
			ok := success.Int64 != 0
			run.Success = &ok
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns a run's per-mediaset results in insertion order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, mediaset, kind, result, detail, created_at FROM outcomes WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var (
			outcome   Outcome
			createdAt string
		)
		if err := rows.Scan(&outcome.RunID, &outcome.Mediaset, &outcome.Kind,
			&outcome.Result, &outcome.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			outcome.CreatedAt = ts.Local()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
