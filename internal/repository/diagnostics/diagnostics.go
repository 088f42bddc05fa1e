package diagnosticsRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	ports "github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

const tableName = "diagnostics_results"

type Repository struct {
	db    persistence.Persistence
	users ports.IUserRepo
	Log   *slog.Logger
	now   func() time.Time
}

func New(db persistence.Persistence, users ports.IUserRepo, log *slog.Logger) ports.IDiagnosticsRepo {
	return &Repository{
		db:    db,
		users: users,
		Log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) Save(ctx context.Context, result *domain.DiagnosticsResult) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		return r.SaveTx(ctx, tx, result)
	})
}

// SaveTx при совпадении (tg_user_id, cookie_id) документ и completed_at заменяются целиком
func (r *Repository) SaveTx(ctx context.Context, q persistence.Querier, result *domain.DiagnosticsResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = r.now()
	}

	if err := r.users.EnsureTx(ctx, q, result.TgUserID); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (tg_user_id, cookie_id, result_json, completed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (tg_user_id, cookie_id) DO UPDATE SET
			result_json = excluded.result_json,
			completed_at = excluded.completed_at`, tableName)

	if err := q.Exec(ctx, query, result.TgUserID, result.CookieID, result.Result, result.CompletedAt); err != nil {
		r.Log.Error("failed to save diagnostics",
			"error", err,
			"tg_user_id", result.TgUserID,
			"cookie_id", result.CookieID)
		return fmt.Errorf("failed to save diagnostics: %w", err)
	}

	r.Log.Debug("diagnostics saved", "tg_user_id", result.TgUserID, "cookie_id", result.CookieID)
	return nil
}

// LoadLatest последний по времени завершения результат пользователя
func (r *Repository) LoadLatest(ctx context.Context, tgUserID int64) (*domain.DiagnosticsResult, error) {
	query := fmt.Sprintf(`SELECT id, tg_user_id, cookie_id, result_json, completed_at FROM %s
		WHERE tg_user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT 1`, tableName)

	var result domain.DiagnosticsResult
	if err := r.db.Get(ctx, &result, query, tgUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("diagnostics for %d: %w", tgUserID, domain.ErrNotFound)
		}
		r.Log.Error("failed to load diagnostics", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to load diagnostics: %w", err)
	}
	return &result, nil
}

func (r *Repository) CountByUser(ctx context.Context, tgUserID int64) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tg_user_id = ?`, tableName)
	if err := r.db.Get(ctx, &count, query, tgUserID); err != nil {
		r.Log.Error("failed to count diagnostics", "error", err, "tg_user_id", tgUserID)
		return 0, fmt.Errorf("failed to count diagnostics: %w", err)
	}
	return count, nil
}
