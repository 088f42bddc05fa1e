package sqlstore

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/pg"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlite"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Backend физический движок хранилища
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// SupportsReturning умеет ли движок INSERT ... RETURNING через драйвер
func (b Backend) SupportsReturning() bool {
	return b == BackendPostgres
}

type Config struct {
	URL                    string `envconfig:"URL" default:"spacegrow.db"`
	StatementTimeoutMillis int    `envconfig:"STATEMENT_TIMEOUT" default:"60000"`
	MaxOpenConns           int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
	AutoMigrate            bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// ParseBackend определяет движок по строке подключения.
// postgres:// и postgresql:// -> Postgres, file: и sqlite:// -> SQLite, любая другая схема -> ошибка,
// строка без схемы считается путём к файлу SQLite
func ParseBackend(spec string) (Backend, string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", fmt.Errorf("%w: empty connection string", domain.ErrUnsupportedBackend)
	}

	scheme, rest, hasScheme := strings.Cut(spec, "://")
	if !hasScheme {
		return BackendSQLite, strings.TrimPrefix(spec, "file:"), nil
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return BackendPostgres, spec, nil
	case "sqlite", "file":
		return BackendSQLite, rest, nil
	default:
		return "", "", fmt.Errorf("%w: scheme %q", domain.ErrUnsupportedBackend, scheme)
	}
}

// Open подключается к хранилищу и, если включено, применяет миграции
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*DB, error) {
	backend, target, err := ParseBackend(cfg.URL)
	if err != nil {
		return nil, err
	}

	var (
		conn       *sqlx.DB
		migrations fs.FS
	)
	switch backend {
	case BackendPostgres:
		pgCfg := pg.Config{
			URL:                    target,
			StatementTimeoutMillis: cfg.StatementTimeoutMillis,
			MaxOpenConns:           cfg.MaxOpenConns,
		}
		conn, err = pgCfg.NewConnection(ctx)
		migrations = pg.Migrations()
	case BackendSQLite:
		sqliteCfg := sqlite.Config{Path: target}
		conn, err = sqliteCfg.NewConnection(ctx)
		migrations = sqlite.Migrations()
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", backend, err)
	}

	db := NewDB(conn, backend)
	log.Info("storage connected", "backend", backend)

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, db, migrations, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
