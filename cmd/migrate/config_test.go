package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	if got := migrationsDir(); got != "/custom/migrations" {
		t.Fatalf("expected MIGRATIONS_DIR override, got %q", got)
	}
}

func TestMigrationsDir_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	if got := migrationsDir(); got != defaultMigrationsDir {
		t.Fatalf("expected default migrations dir, got %q", got)
	}
}

func TestCheckDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		wantErr string
	}{
		{dsn: "postgres://u:p@localhost:5432/cards"},
		{dsn: "postgresql://localhost/cards"},
		{dsn: "", wantErr: "no history store configured"},
		{dsn: "sqlite://data/history.db", wantErr: "only apply to postgres"},
	}
	for _, tt := range tests {
		err := checkDSN(tt.dsn)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("checkDSN(%q) = %v, want nil", tt.dsn, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("checkDSN(%q) = %v, want error containing %q", tt.dsn, err, tt.wantErr)
		}
	}
}

func TestCreateCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"create", "add_term_index", "--dir", dir})
	cmd.SetOut(&strings.Builder{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*_add_term_index.sql"))
	if len(matches) != 1 {
		t.Fatalf("expected one migration file, got %v", matches)
	}
}

func TestUpWithoutDSN(t *testing.T) {
	t.Setenv("HISTORY_DSN", "")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"up"})
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "no history store configured") {
		t.Fatalf("expected missing dsn error, got %v", err)
	}
}
