package sqlstore

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// Таблица версий одинакова для обоих движков
const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT NOT NULL PRIMARY KEY,
		dirty BOOLEAN NOT NULL DEFAULT FALSE,
		applied_at TIMESTAMP NOT NULL
	)`

type migration struct {
	Version int64
	Name    string
	Content string
}

// RunMigrations применяет миграции из migrations/*.sql по возрастанию версии
func RunMigrations(ctx context.Context, db *DB, files fs.FS, logger *slog.Logger) error {
	logger.Info("starting database migrations", "backend", db.Backend())

	if err := db.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := readMigrations(files)
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}

	var currentVersion int64
	if err := db.Get(ctx, &currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations WHERE dirty = ?", false); err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= currentVersion {
			logger.Debug("migration already applied", "version", m.Version, "name", m.Name)
			continue
		}

		logger.Info("applying migration", "version", m.Version, "name", m.Name)
		err := db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
			if err := tx.Exec(ctx, m.Content); err != nil {
				return fmt.Errorf("execute migration: %w", err)
			}
			return tx.Exec(ctx, `
				INSERT INTO schema_migrations (version, dirty, applied_at) VALUES (?, ?, ?)
				ON CONFLICT (version) DO UPDATE SET dirty = excluded.dirty, applied_at = excluded.applied_at`,
				m.Version, false, time.Now().UTC())
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		applied++
	}

	logger.Info("database migrations completed", "applied", applied, "total", len(migrations))
	return nil
}

func readMigrations(files fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(files, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid migration name %s: %w", entry.Name(), err)
		}

		content, err := fs.ReadFile(files, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{Version: version, Name: name, Content: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationName формат: 0001_name.sql
func parseMigrationName(filename string) (int64, string, error) {
	name := strings.TrimSuffix(filename, ".sql")

	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid format: expected NNNN_name.sql")
	}

	version, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number: %w", err)
	}
	return version, parts[1], nil
}
