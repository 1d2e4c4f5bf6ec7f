package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"cardbot/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	config.LoadEnvFiles()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dsn string
	dir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the pass history schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", os.Getenv("HISTORY_DSN"), "Postgres DSN of the history store (defaults to HISTORY_DSN)")
	root.PersistentFlags().StringVar(&opts.dir, "dir", migrationsDir(), "Migrations directory (defaults to MIGRATIONS_DIR)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(opts, func(cmd *cobra.Command, db *sql.DB) error {
				if err := goose.UpContext(cmd.Context(), db, opts.dir); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				cmd.Println("Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: withDB(opts, func(cmd *cobra.Command, db *sql.DB) error {
				if err := goose.DownContext(cmd.Context(), db, opts.dir); err != nil {
					return fmt.Errorf("failed to rollback migrations: %w", err)
				}
				cmd.Println("Migrations rolled back successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			Args:  cobra.NoArgs,
			RunE: withDB(opts, func(cmd *cobra.Command, db *sql.DB) error {
				if err := goose.StatusContext(cmd.Context(), db, opts.dir); err != nil {
					return fmt.Errorf("failed to check migration status: %w", err)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a new SQL migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := goose.Create(nil, opts.dir, args[0], "sql"); err != nil {
					return fmt.Errorf("failed to create migration: %w", err)
				}
				cmd.Printf("Migration created: %s\n", args[0])
				return nil
			},
		},
	)
	return root
}

// withDB opens the history store for the duration of run.
func withDB(opts *options, run func(cmd *cobra.Command, db *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := checkDSN(opts.dsn); err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
			cmd.SetContext(ctx)
		}

		pool, err := pgxpool.New(ctx, opts.dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()

		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		return run(cmd, db)
	}
}

// checkDSN accepts Postgres DSNs only; the SQLite store creates its schema
// on open.
func checkDSN(dsn string) error {
	switch {
	case dsn == "":
		return errors.New("no history store configured: set HISTORY_DSN or --dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return nil
	default:
		return errors.New("migrations only apply to postgres history stores")
	}
}
