// Package sqlstoretest поднимает хранилище для тестов репозиториев.
// По умолчанию это файл SQLite во временной директории; если задан
// SPACEGROW_TEST_POSTGRES_URL, тот же набор тестов идёт против Postgres.
// OpenPostgres поднимает Postgres в контейнере для тестов паритета бэкендов
package sqlstoretest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
)

const PostgresURLEnv = "SPACEGROW_TEST_POSTGRES_URL"

var tables = []string{
	"game_actions",
	"cta_clicks",
	"content_views",
	"ai_interactions",
	"diagnostics_results",
	"site_events",
	"site_sessions",
	"user_identities",
	"users",
}

// Logger логгер, который ничего не пишет
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open возвращает чистую базу с применёнными миграциями
func Open(t testing.TB) *sqlstore.DB {
	t.Helper()

	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		url = filepath.Join(t.TempDir(), "test.db")
	}
	return OpenURL(t, url)
}

// OpenSQLite всегда SQLite, независимо от окружения
func OpenSQLite(t testing.TB) *sqlstore.DB {
	t.Helper()
	return OpenURL(t, filepath.Join(t.TempDir(), "test.db"))
}

// OpenURL подключается к указанному хранилищу и очищает таблицы
func OpenURL(t testing.TB, url string) *sqlstore.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.Config{URL: url, AutoMigrate: true}, Logger())
	if err != nil {
		t.Fatalf("open store %q: %v", url, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range tables {
		if err := db.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean table %s: %v", table, err)
		}
	}
	return db
}
