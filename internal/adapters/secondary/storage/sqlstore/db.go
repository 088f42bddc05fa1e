package sqlstore

import (
	"context"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	"github.com/jmoiron/sqlx"
)

// DB обёртка над sqlx.DB, одинаковая для SQLite и Postgres.
// Движок выбирается один раз в Open, бизнес-код от него не зависит
type DB struct {
	querier
	Db *sqlx.DB
}

func NewDB(db *sqlx.DB, backend Backend) *DB {
	return &DB{
		querier: querier{ext: db, backend: backend},
		Db:      db,
	}
}

func (d *DB) Backend() string {
	return string(d.backend)
}

// BeginTx начинает новую транзакцию
func (d *DB) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	tx, err := d.Db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{querier: querier{ext: tx, backend: d.backend}, tx: tx}, nil
}

// WithTransaction выполняет fn в транзакции: commit при успехе, rollback при ошибке или панике
func (d *DB) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) (err error) {
	tx, err := d.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Db.PingContext(ctx)
}

// Close закрывает подключение к базе данных
func (d *DB) Close() error {
	return d.Db.Close()
}

var _ persistence.Persistence = (*DB)(nil)
