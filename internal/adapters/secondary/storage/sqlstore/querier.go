package sqlstore

import (
	"context"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/jmoiron/sqlx"
)

// querier общая реализация запросов для DB и Tx.
// Все запросы пишутся с "?" и переводятся в синтаксис драйвера через Rebind
type querier struct {
	ext     sqlx.ExtContext
	backend Backend
}

func (q querier) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q querier) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q querier) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	return err
}

// ExecWithResult возвращает количество затронутых строк
func (q querier) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// NamedExec именованный запрос (:field по db-тегам)
func (q querier) NamedExec(ctx context.Context, query string, arg interface{}) error {
	_, err := sqlx.NamedExecContext(ctx, q.ext, query, arg)
	return err
}

func (q querier) QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...)
}

// InsertReturningID на Postgres дописывает RETURNING id, на SQLite берёт last_insert_rowid соединения
func (q querier) InsertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if q.backend.SupportsReturning() {
		var id int64
		if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (q querier) QueryRows(ctx context.Context, query string, args ...interface{}) ([]domain.Row, error) {
	rows, err := q.ext.QueryxContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// scanRows сохраняет порядок колонок; []byte отдаётся строкой
func scanRows(rows *sqlx.Rows) ([]domain.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := make([]domain.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(domain.Row, len(columns))
		for i, name := range columns {
			value := values[i]
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[i] = domain.Column{Name: name, Value: value}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
