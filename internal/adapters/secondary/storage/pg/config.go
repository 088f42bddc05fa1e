package pg

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	maxOpenConnections            = 25
	maxIdleConnections            = 5
	connMaxLifetime               = 5 * time.Minute
	connMaxIdleTime               = 1 * time.Minute
	defaultStatementTimeoutMillis = 60000
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations схема для Postgres
func Migrations() fs.FS {
	return migrationsFS
}

type Config struct {
	URL                    string
	StatementTimeoutMillis int
	MaxOpenConns           int
}

// NewConnection подключение через pgx stdlib с настройками пула и statement_timeout
func (c *Config) NewConnection(ctx context.Context) (*sqlx.DB, error) {
	connectionConfig, err := pgx.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	timeout := c.StatementTimeoutMillis
	if timeout <= 0 {
		timeout = defaultStatementTimeoutMillis
	}
	// задаём на уровне соединения, чтобы действовало для всех соединений пула
	if connectionConfig.RuntimeParams == nil {
		connectionConfig.RuntimeParams = map[string]string{}
	}
	connectionConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", timeout)
	connectionConfig.RuntimeParams["timezone"] = "UTC"

	connectionString := stdlib.RegisterConnConfig(connectionConfig)
	db, err := sqlx.ConnectContext(ctx, "pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("connect db error: %w", err)
	}

	maxOpen := c.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = maxOpenConnections
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
