package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pass_runs (
    id            TEXT     PRIMARY KEY,
    kind          TEXT     NOT NULL,
    term          TEXT     NOT NULL DEFAULT '',
    source_count  INTEGER  NOT NULL,
    success_count INTEGER  NOT NULL,
    error_count   INTEGER  NOT NULL,
    match_count   INTEGER  NOT NULL,
    errors        TEXT     NOT NULL DEFAULT '[]',
    started_at    DATETIME NOT NULL,
    finished_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pass_runs_started_at ON pass_runs (started_at DESC);`

// SQLiteRepo stores runs in a local file for single-process deployments.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens the database at path, creating its directory and schema
// when missing.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) CreateRun(ctx context.Context, run *Run) error {
	const q = `
		INSERT INTO pass_runs (id, kind, term, source_count, success_count, error_count, match_count, errors, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		run.ID.String(), string(run.Kind), run.Term,
		run.SourceCount, run.SuccessCount, run.ErrorCount, run.MatchCount,
		string(encoded), run.StartedAt.UTC(), run.FinishedAt.UTC())
	return err
}

func (r *SQLiteRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	const q = `
		SELECT id, kind, term, source_count, success_count, error_count, match_count, errors, started_at, finished_at
		FROM pass_runs
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run     Run
			id      string
			kind    string
			encoded string
		)
		if err := rows.Scan(&id, &kind, &run.Term, &run.SourceCount, &run.SuccessCount,
			&run.ErrorCount, &run.MatchCount, &encoded, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(encoded), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode errors of run %s: %w", id, err)
		}
		run.Kind = Kind(kind)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepo) Close() {
	_ = r.db.Close()
}
