package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const sqliteScheme = "sqlite://"

// Open connects to the store named by dsn. postgres:// and postgresql://
// select Postgres, sqlite://<path> selects a local SQLite file. An empty dsn
// disables history and returns a nil Repository.
func Open(ctx context.Context, dsn string) (Repository, func(), error) {
	switch {
	case dsn == "":
		return nil, func() {}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres (%s): %w", redactDSN(dsn), err)
		}
		repo := NewPostgresRepo(pool)
		return repo, repo.Close, nil
	case strings.HasPrefix(dsn, sqliteScheme):
		path := strings.TrimPrefix(dsn, sqliteScheme)
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		repo, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history dsn scheme in %q", redactDSN(dsn))
	}
}

// redactDSN masks credentials so the dsn can be logged.
func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
