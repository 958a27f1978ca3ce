package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"datagent/domain/core"
	"datagent/internal"
)

//go:embed *.sql
var files embed.FS

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

// Migration is one embedded schema change
type Migration struct {
	Version  string
	SQL      string
	Checksum core.Hash
}

// Status reports whether a migration has run
type Status struct {
	Version   string     `json:"version" db:"version"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty" db:"applied_at"`
	Checksum  string     `json:"checksum" db:"checksum"`
	Modified  bool       `json:"modified,omitempty"`
}

// Migrator applies the embedded migrations in version order
type Migrator struct {
	db     *sqlx.DB
	fs     fs.FS
	logger *slog.Logger
}

// NewMigrator creates a migrator over the embedded SQL files
func NewMigrator(db *sqlx.DB, logger *slog.Logger) *Migrator {
	return &Migrator{db: db, fs: files, logger: internal.LoggerOr(logger)}
}

// Load returns the migrations sorted by version
func Load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, Migration{
			Version:  strings.TrimSuffix(name, ".sql"),
			SQL:      string(body),
			Checksum: core.NewHash(body),
		})
	}
	return out, nil
}

// Up applies every pending migration, each in its own transaction
func (m *Migrator) Up(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	migrations, err := Load(m.fs)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, mig := range migrations {
		if prev, ok := applied[mig.Version]; ok {
			if prev.Checksum != mig.Checksum.String() {
				m.logger.Warn("applied migration has changed", slog.String("version", mig.Version))
			}
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", mig.Version, err)
		}
		m.logger.Info("applied migration", slog.String("version", mig.Version))
	}
	return nil
}

// Status lists every embedded migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := Load(m.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	out := make([]Status, 0, len(migrations))
	for _, mig := range migrations {
		s := Status{Version: mig.Version, Checksum: mig.Checksum.String()}
		if prev, ok := applied[mig.Version]; ok {
			s.Applied = true
			s.AppliedAt = prev.AppliedAt
			s.Modified = prev.Checksum != s.Checksum
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]Status, error) {
	var rows []Status
	if err := m.db.SelectContext(ctx, &rows, `SELECT version, checksum, applied_at FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	out := make(map[string]Status, len(rows))
	for _, r := range rows {
		out[r.Version] = r
	}
	return out, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)`,
		mig.Version, mig.Checksum.String()); err != nil {
		return err
	}
	return tx.Commit()
}
