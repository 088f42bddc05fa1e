package userRepo

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

type userColumns struct {
	TableName              string
	UserID                 string
	Username               string
	FirstName              string
	LastName               string
	HasStartedDiagnostics  string
	FirstReminderSent      string
	SecondReminderSent     string
	StartedAt              string
	DiagnosticsStartedAt   string
	DiagnosticsCompletedAt string
	CreatedAt              string
	UpdatedAt              string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
	now     func() time.Time
}

// New создаёт репозиторий пользователей бота
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: userColumns{
			TableName:              "users",
			UserID:                 "user_id",
			Username:               "username",
			FirstName:              "first_name",
			LastName:               "last_name",
			HasStartedDiagnostics:  "has_started_diagnostics",
			FirstReminderSent:      "first_reminder_sent",
			SecondReminderSent:     "second_reminder_sent",
			StartedAt:              "started_at",
			DiagnosticsStartedAt:   "diagnostics_started_at",
			DiagnosticsCompletedAt: "diagnostics_completed_at",
			CreatedAt:              "created_at",
			UpdatedAt:              "updated_at",
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.UserID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.HasStartedDiagnostics,
		r.columns.FirstReminderSent,
		r.columns.SecondReminderSent,
		r.columns.StartedAt,
		r.columns.DiagnosticsStartedAt,
		r.columns.DiagnosticsCompletedAt,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// CreateOrUpdate при /start: новый пользователь получает started_at = now,
// существующий обновляется только пока диагностика не начата
func (r *Repository) CreateOrUpdate(ctx context.Context, user *domain.User) error {
	now := r.now()
	query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (%[2]s) DO UPDATE SET
			%[3]s = excluded.%[3]s,
			%[4]s = excluded.%[4]s,
			%[5]s = excluded.%[5]s,
			%[9]s = excluded.%[9]s,
			%[11]s = excluded.%[11]s
		WHERE %[1]s.%[6]s = ?`,
		r.columns.TableName,
		r.columns.UserID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.HasStartedDiagnostics,
		r.columns.FirstReminderSent,
		r.columns.SecondReminderSent,
		r.columns.StartedAt,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)

	affected, err := r.db.ExecWithResult(ctx, query,
		user.UserID,
		user.Username,
		user.FirstName,
		user.LastName,
		false,
		false,
		false,
		now,
		now,
		now,
		false)
	if err != nil {
		r.Log.Error("failed to create or update user", "error", err, "user_id", user.UserID)
		return fmt.Errorf("failed to create or update user: %w", err)
	}

	if affected == 0 {
		r.Log.Debug("user already started diagnostics, started_at kept", "user_id", user.UserID)
		return nil
	}
	r.Log.Debug("user created or updated", "user_id", user.UserID, "started_at", now)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID)

	var user domain.User
	if err := r.db.Get(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		r.Log.Error("failed to get user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListIDs все пользователи в порядке user_id
func (r *Repository) ListIDs(ctx context.Context) ([]int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		r.columns.UserID,
		r.columns.TableName,
		r.columns.UserID)

	var ids []int64
	if err := r.db.Select(ctx, &ids, query); err != nil {
		r.Log.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

func (r *Repository) MarkDiagnosticsStarted(ctx context.Context, userID int64) error {
	now := r.now()
	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		r.columns.TableName,
		r.columns.HasStartedDiagnostics,
		r.columns.DiagnosticsStartedAt,
		r.columns.UpdatedAt,
		r.columns.UserID)

	affected, err := r.db.ExecWithResult(ctx, query, true, now, now, userID)
	if err != nil {
		r.Log.Error("failed to mark diagnostics started", "error", err, "user_id", userID)
		return fmt.Errorf("failed to mark diagnostics started: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	r.Log.Debug("diagnostics started", "user_id", userID)
	return nil
}

func (r *Repository) MarkDiagnosticsCompleted(ctx context.Context, userID int64) error {
	return r.MarkDiagnosticsCompletedTx(ctx, r.db, userID)
}

// MarkDiagnosticsCompletedTx проставляет diagnostics_completed_at в рамках переданного подключения/транзакции
func (r *Repository) MarkDiagnosticsCompletedTx(ctx context.Context, q persistence.Querier, userID int64) error {
	now := r.now()
	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ? WHERE %s = ?`,
		r.columns.TableName,
		r.columns.DiagnosticsCompletedAt,
		r.columns.UpdatedAt,
		r.columns.UserID)

	affected, err := q.ExecWithResult(ctx, query, now, now, userID)
	if err != nil {
		r.Log.Error("failed to mark diagnostics completed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to mark diagnostics completed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	r.Log.Debug("diagnostics completed", "user_id", userID)
	return nil
}

func (r *Repository) ListForReminder(ctx context.Context, kind domain.ReminderKind, cutoff time.Time) ([]domain.User, error) {
	var flag string
	switch kind {
	case domain.ReminderFirst:
		flag = r.columns.FirstReminderSent
	case domain.ReminderSecond:
		flag = r.columns.SecondReminderSent
	default:
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown reminder kind %q", kind))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE %s = ? AND %s = ? AND %s IS NOT NULL AND %s <= ?
		ORDER BY %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.HasStartedDiagnostics,
		flag,
		r.columns.StartedAt,
		r.columns.StartedAt,
		r.columns.UserID)

	var users []domain.User
	if err := r.db.Select(ctx, &users, query, false, false, cutoff.UTC()); err != nil {
		r.Log.Error("failed to list users for reminder", "error", err, "kind", kind)
		return nil, fmt.Errorf("failed to list users for reminder: %w", err)
	}
	return users, nil
}

func (r *Repository) MarkReminderSent(ctx context.Context, userID int64, kind domain.ReminderKind) error {
	var flag string
	switch kind {
	case domain.ReminderFirst:
		flag = r.columns.FirstReminderSent
	case domain.ReminderSecond:
		flag = r.columns.SecondReminderSent
	default:
		return domain.NewValidationError("kind", fmt.Sprintf("unknown reminder kind %q", kind))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ? WHERE %s = ?`,
		r.columns.TableName,
		flag,
		r.columns.UpdatedAt,
		r.columns.UserID)
	if err := r.db.Exec(ctx, query, true, r.now(), userID); err != nil {
		r.Log.Error("failed to mark reminder sent", "error", err, "user_id", userID, "kind", kind)
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	r.Log.Debug("reminder marked as sent", "user_id", userID, "kind", kind)
	return nil
}

// EnsureTx нужна перед записью связки или диагностики: обе таблицы ссылаются на users
func (r *Repository) EnsureTx(ctx context.Context, q persistence.Querier, userID int64) error {
	now := r.now()
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (%s) DO NOTHING`,
		r.columns.TableName,
		r.columns.UserID,
		r.columns.HasStartedDiagnostics,
		r.columns.FirstReminderSent,
		r.columns.SecondReminderSent,
		r.columns.StartedAt,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.UserID)

	// started_at не заполняется: такой пользователь не получает напоминаний, пока не нажмёт /start
	if err := q.Exec(ctx, query, userID, false, false, false, nil, now, now); err != nil {
		r.Log.Error("failed to ensure user", "error", err, "user_id", userID)
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}
