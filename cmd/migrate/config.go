package main

import "os"

const defaultMigrationsDir = "db/migrations"

// migrationsDir is where goose reads and creates migration files.
// MIGRATIONS_DIR overrides the repository default.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return defaultMigrationsDir
}
