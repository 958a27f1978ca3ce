package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"datagent/adapters/postgres/migrations"
	"datagent/internal"
	"datagent/internal/config"
	"datagent/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the datagent database schema",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newUpCmd(),
		newStatusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads configuration and opens the database named by DATABASE_URL
func connect(ctx context.Context, stderr io.Writer) (*sqlx.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level), stderr)

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, logger, nil
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, logger, err := connect(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.NewMigrator(db, logger).Up(cmd.Context()); err != nil {
				return errors.DatabaseError("database migration failed", err)
			}
			logger.Info("schema is up to date")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List embedded migrations and whether they have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, logger, err := connect(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := migrations.NewMigrator(db, logger).Status(cmd.Context())
			if err != nil {
				return errors.DatabaseError("failed to read migration status", err)
			}
			return writeStatus(cmd.OutOrStdout(), statuses)
		},
	}
}

func writeStatus(w io.Writer, statuses []migrations.Status) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statuses)
}
