package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"datagent/adapters/postgres/migrations"
	"datagent/internal"
	"datagent/internal/config"
	"datagent/internal/container"
	"datagent/internal/errors"
)

// initDatabase connects to PostgreSQL and applies pending migrations
func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := migrations.NewMigrator(db, logger).Up(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError("database migration failed", err)
	}
	return db, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level), os.Stderr)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("code", errors.GetCode(err)), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Paths.UploadFolder, 0o755); err != nil {
		return errors.Wrap(err, "failed to create upload folder")
	}

	db, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		db.Close()
		return err
	}
	defer c.Shutdown(context.Background())

	if err := c.InitWithDatabase(db); err != nil {
		db.Close()
		return err
	}
	server, err := c.Server()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
