package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Migration is one versioned SQL file
type Migration struct {
	Version int
	Name    string
	Path    string
	Down    bool
}

// Migrator applies versioned SQL files and records them in schema_migrations
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger *logrus.Logger
}

func NewMigrator(db *sql.DB, files fs.FS, logger *logrus.Logger) *Migrator {
	return &Migrator{db: db, files: files, logger: logger}
}

// LoadMigrations lists the .sql files in fsys sorted by version.
// Files without a numeric prefix are skipped.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".sql") {
			continue
		}

		version, migName, err := parseVersionAndName(name)
		if err != nil {
			continue
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    migName,
			Path:    name,
			Down:    strings.HasSuffix(lower, ".down.sql"),
		})
	}

	sort.SliceStable(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// expected: 001_create_audit_logs.up.sql
func parseVersionAndName(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return 0, "", errors.New("invalid filename")
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil || version < 0 {
		return 0, "", errors.New("invalid version")
	}
	name := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(parts[1], ".sql"), ".up"), ".down")
	return version, name, nil
}

func (m *Migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) applied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", version).Scan(&exists)
	return exists, err
}

// Up applies every pending up migration in version order
func (m *Migrator) Up(ctx context.Context) error {
	migrations, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		if mig.Down {
			continue
		}
		done, err := m.applied(ctx, mig.Version)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		m.logger.WithFields(logrus.Fields{"version": mig.Version, "name": mig.Name}).Info("Applying migration")
		if err := m.exec(ctx, mig.Path); err != nil {
			return fmt.Errorf("failed applying %s: %w", mig.Path, err)
		}
		if _, err := m.db.ExecContext(ctx, "INSERT INTO schema_migrations(version, name, applied_at) VALUES($1,$2,$3)", mig.Version, mig.Name, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// Down reverts every applied migration in reverse version order
func (m *Migrator) Down(ctx context.Context) error {
	migrations, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	for i := len(migrations) - 1; i >= 0; i-- {
		mig := migrations[i]
		if !mig.Down {
			continue
		}
		done, err := m.applied(ctx, mig.Version)
		if err != nil {
			return err
		}
		if !done {
			continue
		}

		m.logger.WithFields(logrus.Fields{"version": mig.Version, "name": mig.Name}).Info("Reverting migration")
		if err := m.exec(ctx, mig.Path); err != nil {
			return fmt.Errorf("failed reverting %s: %w", mig.Path, err)
		}
		if _, err := m.db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version=$1", mig.Version); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) prepare(ctx context.Context) ([]Migration, error) {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}
	migrations, err := LoadMigrations(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return migrations, nil
}

func (m *Migrator) exec(ctx context.Context, path string) error {
	data, err := fs.ReadFile(m.files, path)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx, string(data))
	return err
}
