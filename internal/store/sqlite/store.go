// Package sqlite stores runs in a SQLite database: one row per run in runs
// and one row per generation in generations keyed by (run_id, step).
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"eca-morph/internal/errs"
	"eca-morph/internal/store"

	_ "modernc.org/sqlite"
)

const collaborator = "sqlite"

//go:embed schema.sql
var schema string

// Store is a SQLite-backed store.Gateway.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Gateway = (*Store)(nil)

// Open opens the database at path and creates the schema. The special path
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.Invalid("store.path", path, "is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Unavailable(collaborator, "open", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errs.Unavailable(collaborator, "ping", err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := sqlDB.Exec(stmt); err != nil {
			_ = sqlDB.Close()
			return nil, errs.Unavailable(collaborator, "migrate", err)
		}
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errs.Unavailable(collaborator, "use", errors.New("storage is not configured"))
	}
	return nil
}

// SaveRun inserts or replaces the run metadata.
func (s *Store) SaveRun(ctx context.Context, run store.RunRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if run.RunID == "" {
		return errs.Invalid("run_id", run.RunID, "is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	cfg, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("encode run config: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO runs (run_id, created_at, config) VALUES (?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET created_at = excluded.created_at, config = excluded.config
`, run.RunID, toMillis(run.CreatedAt), string(cfg))
	if err != nil {
		return errs.Unavailable(collaborator, "save run", err)
	}
	return nil
}

// SaveGenerations writes gens in one transaction.
func (s *Store) SaveGenerations(ctx context.Context, runID string, gens []store.GenerationRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return errs.Unavailable(collaborator, "save generations", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO generations (run_id, step, vector) VALUES (?, ?, ?)
ON CONFLICT(run_id, step) DO UPDATE SET vector = excluded.vector
`)
	if err != nil {
		_ = tx.Rollback()
		return errs.Unavailable(collaborator, "save generations", err)
	}
	defer stmt.Close()
	for _, g := range gens {
		if _, err := stmt.ExecContext(ctx, runID, g.Index, store.EncodeRow(g.Vector)); err != nil {
			_ = tx.Rollback()
			return errs.Unavailable(collaborator, "save generations", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.Unavailable(collaborator, "save generations", err)
	}
	return nil
}

// LoadRun reads the run metadata.
func (s *Store) LoadRun(ctx context.Context, runID string) (store.RunRecord, error) {
	if err := s.ready(ctx); err != nil {
		return store.RunRecord{}, err
	}
	var (
		created int64
		cfg     string
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT created_at, config FROM runs WHERE run_id = ?`, runID).Scan(&created, &cfg)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, runID)
	}
	if err != nil {
		return store.RunRecord{}, errs.Unavailable(collaborator, "load run", err)
	}
	run := store.RunRecord{RunID: runID, CreatedAt: fromMillis(created)}
	if err := json.Unmarshal([]byte(cfg), &run.Config); err != nil {
		return store.RunRecord{}, fmt.Errorf("decode run config: %w", err)
	}
	return run, nil
}

// LoadGenerations reads every stored row of runID ordered by step.
func (s *Store) LoadGenerations(ctx context.Context, runID string) ([]store.GenerationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT step, vector FROM generations WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, errs.Unavailable(collaborator, "load generations", err)
	}
	defer rows.Close()

	var out []store.GenerationRecord
	for rows.Next() {
		var (
			step int
			raw  []byte
		)
		if err := rows.Scan(&step, &raw); err != nil {
			return nil, errs.Unavailable(collaborator, "load generations", err)
		}
		vec, err := store.DecodeRow(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, store.GenerationRecord{RunID: runID, Index: step, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Unavailable(collaborator, "load generations", err)
	}
	return out, nil
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
