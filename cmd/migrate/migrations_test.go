package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

// repoMigrations returns db/migrations relative to this file.
func repoMigrations(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", defaultMigrationsDir))
}

func TestCollectMigrations(t *testing.T) {
	migrations, err := goose.CollectMigrations(repoMigrations(t), 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != 1 {
		t.Fatalf("expected migrations to start at version 1, got %v", migrations)
	}
}

func TestSQLMigrations(t *testing.T) {
	dir := repoMigrations(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	var schema strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		for _, directive := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(b), directive) {
				t.Errorf("%s missing %q", e.Name(), directive)
			}
		}
		schema.Write(b)
	}

	// Columns written and read by the Postgres history repository.
	for _, column := range []string{
		"id", "kind", "term", "source_count", "success_count", "error_count",
		"match_count", "errors", "started_at", "finished_at",
	} {
		if !strings.Contains(schema.String(), column) {
			t.Errorf("pass_runs schema missing column %q", column)
		}
	}
}
