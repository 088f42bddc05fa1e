package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Migrations схема для SQLite
func Migrations() fs.FS {
	return migrationsFS
}

type Config struct {
	Path string
}

// dsn включает внешние ключи (каскадное удаление событий), WAL и ожидание блокировки.
// _time_format=sqlite пишет time.Time в формате, который драйвер читает обратно в TIMESTAMP-колонках
func (c *Config) dsn() string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	if !c.inMemory() {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Set("_time_format", "sqlite")
	params.Set("_txlock", "immediate")
	return "file:" + c.Path + "?" + params.Encode()
}

func (c *Config) inMemory() bool {
	return c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory")
}

// NewConnection открывает файл базы (создаёт при отсутствии)
func (c *Config) NewConnection(ctx context.Context) (*sqlx.DB, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sqlx.ConnectContext(ctx, driverName, c.dsn())
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %s: %w", c.Path, err)
	}

	// in-memory база живёт в пределах одного соединения
	if c.inMemory() {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
