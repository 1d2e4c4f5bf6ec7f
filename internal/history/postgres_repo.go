package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const sql = `
		INSERT INTO pass_runs (id, kind, term, source_count, success_count, error_count, match_count, errors, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.db.Exec(ctx, sql,
		run.ID.String(), string(run.Kind), run.Term,
		run.SourceCount, run.SuccessCount, run.ErrorCount, run.MatchCount,
		errs, run.StartedAt, run.FinishedAt)
	return err
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	const sql = `
		SELECT id::text, kind, term, source_count, success_count, error_count, match_count, errors, started_at, finished_at
		FROM pass_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run  Run
			id   string
			kind string
		)
		if err := rows.Scan(&id, &kind, &run.Term, &run.SourceCount, &run.SuccessCount,
			&run.ErrorCount, &run.MatchCount, &run.Errors, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		run.Kind = Kind(kind)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresRepo) Close() {
	r.db.Close()
}
