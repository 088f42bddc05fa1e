package sessionRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	ports "github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

const tableName = "site_sessions"

const allColumns = `id, cookie_id, tg_user_id, session_start, session_end, user_agent, ip, source,
	utm_params, utm_source, utm_medium, utm_campaign, utm_term, utm_content, referrer,
	device_type, device_model, browser, os, screen_resolution, geo_country, geo_city, geo_region,
	page_id, entry_page, exit_page, session_duration, page_views, events_count, updated_at`

// числовые поля patch, остальные разрешённые поля текстовые
var integerPatchFields = map[string]struct{}{
	"session_duration": {},
	"page_views":       {},
}

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
	now func() time.Time
}

func New(db persistence.Persistence, log *slog.Logger) ports.ISessionRepo {
	return &Repository{
		db:  db,
		Log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Open создаёт сессию со счётчиками 0. tg_user_id может быть пустым
func (r *Repository) Open(ctx context.Context, cookieID string, tgUserID *int64, meta domain.SessionMetadata) (int64, error) {
	now := r.now()
	query := fmt.Sprintf(`INSERT INTO %s (cookie_id, tg_user_id, session_start, user_agent, ip, source,
		utm_params, utm_source, utm_medium, utm_campaign, utm_term, utm_content, referrer,
		device_type, device_model, browser, os, screen_resolution, geo_country, geo_city, geo_region,
		page_id, entry_page, page_views, events_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableName)

	id, err := r.db.InsertReturningID(ctx, query,
		cookieID,
		tgUserID,
		now,
		meta.UserAgent,
		meta.IP,
		meta.Source,
		meta.UTMParams,
		meta.UTMSource,
		meta.UTMMedium,
		meta.UTMCampaign,
		meta.UTMTerm,
		meta.UTMContent,
		meta.Referrer,
		meta.DeviceType,
		meta.DeviceModel,
		meta.Browser,
		meta.OS,
		meta.ScreenResolution,
		meta.GeoCountry,
		meta.GeoCity,
		meta.GeoRegion,
		meta.PageID,
		meta.EntryPage,
		0,
		0,
		now)
	if err != nil {
		r.Log.Error("failed to open session", "error", err, "cookie_id", cookieID)
		return 0, fmt.Errorf("failed to open session: %w", err)
	}

	r.Log.Debug("session opened", "session_id", id, "cookie_id", cookieID)
	return id, nil
}

// Close повторное закрытие ничего не меняет и возвращает false
func (r *Repository) Close(ctx context.Context, sessionID int64) (bool, error) {
	now := r.now()
	closed := false

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		var start time.Time
		err := tx.Get(ctx, &start, fmt.Sprintf(`SELECT session_start FROM %s WHERE id = ? AND session_end IS NULL`, tableName), sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		duration := int64(now.Sub(start).Seconds())
		if duration < 0 {
			duration = 0
		}
		affected, err := tx.ExecWithResult(ctx,
			fmt.Sprintf(`UPDATE %s SET session_end = ?, session_duration = COALESCE(session_duration, ?), updated_at = ?
				WHERE id = ? AND session_end IS NULL`, tableName),
			now, duration, now, sessionID)
		if err != nil {
			return err
		}
		closed = affected > 0
		return nil
	})
	if err != nil {
		r.Log.Error("failed to close session", "error", err, "session_id", sessionID)
		return false, fmt.Errorf("failed to close session: %w", err)
	}

	if closed {
		r.Log.Debug("session closed", "session_id", sessionID)
	}
	return closed, nil
}

// Patch неизвестные поля отбрасываются без ошибки
func (r *Repository) Patch(ctx context.Context, sessionID int64, patch domain.SessionPatch) (bool, error) {
	allowed := patch.Allowed()
	if len(allowed) == 0 {
		return false, nil
	}

	fields := make([]string, 0, len(allowed))
	for field := range allowed {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for _, field := range fields {
		value, err := patchValue(field, allowed[field])
		if err != nil {
			return false, err
		}
		sets = append(sets, field+" = ?")
		args = append(args, value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), sessionID)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, tableName, strings.Join(sets, ", "))
	affected, err := r.db.ExecWithResult(ctx, query, args...)
	if err != nil {
		r.Log.Error("failed to patch session", "error", err, "session_id", sessionID, "fields", fields)
		return false, fmt.Errorf("failed to patch session: %w", err)
	}

	r.Log.Debug("session patched", "session_id", sessionID, "fields", fields, "affected", affected)
	return affected > 0, nil
}

// patchValue приводит JSON-значение к типу колонки
func patchValue(field string, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	if _, ok := integerPatchFields[field]; ok {
		switch v := value.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, domain.NewValidationError(field, "must be an integer")
			}
			return int64(v), nil
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		default:
			return nil, domain.NewValidationError(field, "must be a number")
		}
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool, int, int64:
		return fmt.Sprint(v), nil
	default:
		return nil, domain.NewValidationError(field, "must be a scalar")
	}
}

func (r *Repository) GetByID(ctx context.Context, sessionID int64) (*domain.Session, error) {
	var session domain.Session
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, allColumns, tableName)
	if err := r.db.Get(ctx, &session, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %d: %w", sessionID, domain.ErrSessionNotFound)
		}
		r.Log.Error("failed to get session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListActive незакрытые сессии, новые первыми
func (r *Repository) ListActive(ctx context.Context, cookieID string) ([]domain.Session, error) {
	sessions := make([]domain.Session, 0)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE cookie_id = ? AND session_end IS NULL
		ORDER BY session_start DESC, id DESC`, allColumns, tableName)
	if err := r.db.Select(ctx, &sessions, query, cookieID); err != nil {
		r.Log.Error("failed to list active sessions", "error", err, "cookie_id", cookieID)
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// ListByCookie все сессии cookie_id в хронологическом порядке
func (r *Repository) ListByCookie(ctx context.Context, cookieID string) ([]domain.Session, error) {
	sessions := make([]domain.Session, 0)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE cookie_id = ? ORDER BY session_start, id`, allColumns, tableName)
	if err := r.db.Select(ctx, &sessions, query, cookieID); err != nil {
		r.Log.Error("failed to list sessions", "error", err, "cookie_id", cookieID)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// AttachUser после связки cookie_id с Telegram дописывает tg_user_id в анонимные сессии и их события
func (r *Repository) AttachUser(ctx context.Context, cookieID string, tgUserID int64) (int64, error) {
	var attached int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		affected, err := tx.ExecWithResult(ctx,
			fmt.Sprintf(`UPDATE %s SET tg_user_id = ?, updated_at = ? WHERE cookie_id = ? AND tg_user_id IS NULL`, tableName),
			tgUserID, r.now(), cookieID)
		if err != nil {
			return err
		}
		attached = affected

		return tx.Exec(ctx,
			fmt.Sprintf(`UPDATE site_events SET tg_user_id = ?
				WHERE tg_user_id IS NULL AND session_id IN (SELECT id FROM %s WHERE cookie_id = ?)`, tableName),
			tgUserID, cookieID)
	})
	if err != nil {
		r.Log.Error("failed to attach user to sessions", "error", err, "cookie_id", cookieID, "tg_user_id", tgUserID)
		return 0, fmt.Errorf("failed to attach user to sessions: %w", err)
	}
	return attached, nil
}

// IncrementEventsTx относительное обновление счётчика, без чтения в приложение
func (r *Repository) IncrementEventsTx(ctx context.Context, q persistence.Querier, sessionID int64) error {
	affected, err := q.ExecWithResult(ctx,
		fmt.Sprintf(`UPDATE %s SET events_count = events_count + 1, updated_at = ? WHERE id = ?`, tableName),
		r.now(), sessionID)
	if err != nil {
		r.Log.Error("failed to increment events count", "error", err, "session_id", sessionID)
		return fmt.Errorf("failed to increment events count: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %d: %w", sessionID, domain.ErrSessionNotFound)
	}
	return nil
}
