package identityRepo

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

const userColumns = `u.user_id, u.username, u.first_name, u.last_name, u.has_started_diagnostics,
	u.first_reminder_sent, u.second_reminder_sent, u.started_at, u.diagnostics_started_at,
	u.diagnostics_completed_at, u.created_at, u.updated_at`

type identityColumns struct {
	TableName string
	ID        string
	TgUserID  string
	CookieID  string
	Source    string
	LinkedAt  string
	MiniappID string
}

type Repository struct {
	db      persistence.Persistence
	users   ports.IUserRepo
	Log     *slog.Logger
	columns identityColumns
	now     func() time.Time
}

func New(db persistence.Persistence, users ports.IUserRepo, log *slog.Logger) ports.IIdentityRepo {
	return &Repository{
		db:    db,
		users: users,
		Log:   log,
		columns: identityColumns{
			TableName: "user_identities",
			ID:        "id",
			TgUserID:  "tg_user_id",
			CookieID:  "cookie_id",
			Source:    "source",
			LinkedAt:  "linked_at",
			MiniappID: "miniapp_id",
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Link при повторной связке той же пары обновляет только linked_at, source остаётся от первой связки
func (r *Repository) Link(ctx context.Context, link *domain.IdentityLink) error {
	if link.LinkedAt.IsZero() {
		link.LinkedAt = r.now()
	}

	query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[5]s = excluded.%[5]s`,
		r.columns.TableName,
		r.columns.TgUserID,
		r.columns.CookieID,
		r.columns.Source,
		r.columns.LinkedAt,
		r.columns.MiniappID)

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := r.users.EnsureTx(ctx, tx, link.TgUserID); err != nil {
			return err
		}
		return tx.Exec(ctx, query, link.TgUserID, link.CookieID, string(link.Source), link.LinkedAt, link.MiniappID)
	})
	if err != nil {
		r.Log.Error("failed to link identity",
			"error", err,
			"tg_user_id", link.TgUserID,
			"cookie_id", link.CookieID)
		return fmt.Errorf("failed to link identity: %w", err)
	}

	r.Log.Debug("identity linked",
		"tg_user_id", link.TgUserID,
		"cookie_id", link.CookieID,
		"source", link.Source)
	return nil
}

func (r *Repository) ResolveByCookie(ctx context.Context, cookieID string) (*domain.LinkedUser, error) {
	query := fmt.Sprintf(`SELECT %s, ui.%s, ui.%s, ui.%s
		FROM %s ui JOIN users u ON u.user_id = ui.%s
		WHERE ui.%s = ?
		ORDER BY ui.%s DESC, ui.%s DESC
		LIMIT 1`,
		userColumns,
		r.columns.CookieID,
		r.columns.Source,
		r.columns.LinkedAt,
		r.columns.TableName,
		r.columns.TgUserID,
		r.columns.CookieID,
		r.columns.LinkedAt,
		r.columns.ID)

	var user domain.LinkedUser
	if err := r.db.Get(ctx, &user, query, cookieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cookie %s: %w", cookieID, domain.ErrNotFound)
		}
		r.Log.Error("failed to resolve user by cookie", "error", err, "cookie_id", cookieID)
		return nil, fmt.Errorf("failed to resolve user by cookie: %w", err)
	}
	return &user, nil
}

func (r *Repository) ResolveByTgUser(ctx context.Context, tgUserID int64) (*domain.LinkedUser, error) {
	query := fmt.Sprintf(`SELECT %s, ui.%s, ui.%s, ui.%s
		FROM users u LEFT JOIN %s ui ON ui.%s = u.user_id
		WHERE u.user_id = ?
		ORDER BY ui.%s DESC, ui.%s DESC
		LIMIT 1`,
		userColumns,
		r.columns.CookieID,
		r.columns.Source,
		r.columns.LinkedAt,
		r.columns.TableName,
		r.columns.TgUserID,
		r.columns.LinkedAt,
		r.columns.ID)

	var user domain.LinkedUser
	if err := r.db.Get(ctx, &user, query, tgUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", tgUserID, domain.ErrNotFound)
		}
		r.Log.Error("failed to resolve user by telegram id", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to resolve user by telegram id: %w", err)
	}
	return &user, nil
}

func (r *Repository) ListByTgUser(ctx context.Context, tgUserID int64) ([]domain.IdentityLink, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = ? ORDER BY %s DESC, %s DESC`,
		r.columns.ID,
		r.columns.TgUserID,
		r.columns.CookieID,
		r.columns.Source,
		r.columns.LinkedAt,
		r.columns.MiniappID,
		r.columns.TableName,
		r.columns.TgUserID,
		r.columns.LinkedAt,
		r.columns.ID)

	links := make([]domain.IdentityLink, 0)
	if err := r.db.Select(ctx, &links, query, tgUserID); err != nil {
		r.Log.Error("failed to list identities", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	return links, nil
}
