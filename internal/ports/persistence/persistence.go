package persistence

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Querier общий набор операций для подключения и транзакции.
// Запросы пишутся с плейсхолдерами "?", реализация переводит их в синтаксис конкретного движка
type Querier interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	// InsertReturningID выполняет INSERT и возвращает сгенерированный id
	InsertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error)
	// QueryRows возвращает строки как упорядоченные пары колонка -> значение
	QueryRows(ctx context.Context, query string, args ...interface{}) ([]domain.Row, error)
}

// Persistence подключение к хранилищу (SQLite или Postgres)
type Persistence interface {
	Querier
	BeginTx(ctx context.Context) (Transaction, error)
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
	Backend() string
	Ping(ctx context.Context) error
	Close() error
}

type Transaction interface {
	Querier
	Commit() error
	Rollback() error
}
