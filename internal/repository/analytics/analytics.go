package analyticsRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	ports "github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

// таблицы в отладочной сводке
var statsTables = []string{
	"users",
	"user_identities",
	"site_sessions",
	"site_events",
	"diagnostics_results",
	"content_views",
	"ai_interactions",
	"cta_clicks",
	"game_actions",
}

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

func New(db persistence.Persistence, log *slog.Logger) ports.IAnalyticsRepo {
	return &Repository{db: db, Log: log}
}

func (r *Repository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.Get(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// ContentTypeCounts три самых просматриваемых типа контента
func (r *Repository) ContentTypeCounts(ctx context.Context, tgUserID int64) ([]domain.CountedValue, error) {
	values := make([]domain.CountedValue, 0)
	query := `SELECT content_type AS value, COUNT(*) AS count FROM content_views
		WHERE tg_user_id = ?
		GROUP BY content_type
		ORDER BY count DESC, value
		LIMIT 3`
	if err := r.db.Select(ctx, &values, query, tgUserID); err != nil {
		r.Log.Error("failed to count content types", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to count content types: %w", err)
	}
	return values, nil
}

// ConversationTypeCounts два самых частых типа AI-диалога
func (r *Repository) ConversationTypeCounts(ctx context.Context, tgUserID int64) ([]domain.CountedValue, error) {
	values := make([]domain.CountedValue, 0)
	query := `SELECT conversation_type AS value, COUNT(*) AS count FROM ai_interactions
		WHERE tg_user_id = ?
		GROUP BY conversation_type
		ORDER BY count DESC, value
		LIMIT 2`
	if err := r.db.Select(ctx, &values, query, tgUserID); err != nil {
		r.Log.Error("failed to count conversation types", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to count conversation types: %w", err)
	}
	return values, nil
}

func (r *Repository) RecentSourceVisits(ctx context.Context, tgUserID int64, limit int) ([]domain.Payload, error) {
	query := `SELECT custom_data FROM site_events
		WHERE tg_user_id = ? AND event_type = ? AND event_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	payloads := make([]domain.Payload, 0)
	if err := r.db.Select(ctx, &payloads, query, tgUserID, domain.EventTypeVisit, domain.EventNameSourceVisit, limit); err != nil {
		r.Log.Error("failed to list source visits", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to list source visits: %w", err)
	}
	return payloads, nil
}

// EventTimes время всех событий пользователя; часы считаются в приложении одинаково для обоих движков
func (r *Repository) EventTimes(ctx context.Context, tgUserID int64) ([]time.Time, error) {
	times := make([]time.Time, 0)
	if err := r.db.Select(ctx, &times, `SELECT created_at FROM site_events WHERE tg_user_id = ? ORDER BY created_at`, tgUserID); err != nil {
		r.Log.Error("failed to list event times", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to list event times: %w", err)
	}
	return times, nil
}

func (r *Repository) SessionStarts(ctx context.Context, tgUserID int64) ([]time.Time, error) {
	times := make([]time.Time, 0)
	if err := r.db.Select(ctx, &times, `SELECT session_start FROM site_sessions WHERE tg_user_id = ? ORDER BY session_start`, tgUserID); err != nil {
		r.Log.Error("failed to list session starts", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to list session starts: %w", err)
	}
	return times, nil
}

func (r *Repository) UserAnalytics(ctx context.Context, tgUserID int64) (*domain.UserAnalytics, error) {
	analytics := &domain.UserAnalytics{TgUserID: tgUserID}

	var err error
	if analytics.TotalSessions, err = r.count(ctx, `SELECT COUNT(*) FROM site_sessions WHERE tg_user_id = ?`, tgUserID); err != nil {
		return nil, r.fail("total_sessions", tgUserID, err)
	}
	if analytics.TotalEvents, err = r.count(ctx, `SELECT COUNT(*) FROM site_events WHERE tg_user_id = ?`, tgUserID); err != nil {
		return nil, r.fail("total_events", tgUserID, err)
	}

	// ORDER BY + LIMIT вместо MAX: агрегат теряет тип колонки в SQLite и приходит строкой
	var last time.Time
	err = r.db.Get(ctx, &last, `SELECT session_start FROM site_sessions WHERE tg_user_id = ? ORDER BY session_start DESC LIMIT 1`, tgUserID)
	switch {
	case err == nil:
		analytics.LastSession = &last
	case !errors.Is(err, sql.ErrNoRows):
		return nil, r.fail("last_session", tgUserID, err)
	}

	diagnostics, err := r.count(ctx, `SELECT COUNT(*) FROM diagnostics_results WHERE tg_user_id = ?`, tgUserID)
	if err != nil {
		return nil, r.fail("diagnostics_completed", tgUserID, err)
	}
	analytics.DiagnosticsCompleted = diagnostics > 0

	if analytics.IdentitiesCount, err = r.count(ctx, `SELECT COUNT(*) FROM user_identities WHERE tg_user_id = ?`, tgUserID); err != nil {
		return nil, r.fail("identities_count", tgUserID, err)
	}
	return analytics, nil
}

func (r *Repository) fail(metric string, tgUserID int64, err error) error {
	r.Log.Error("failed to get user analytics", "error", err, "metric", metric, "tg_user_id", tgUserID)
	return fmt.Errorf("failed to get %s: %w", metric, err)
}

func (r *Repository) SiteStats(ctx context.Context) (*domain.SiteStats, error) {
	stats := &domain.SiteStats{}
	queries := []struct {
		dest  *int64
		query string
	}{
		{&stats.TotalUsers, `SELECT COUNT(DISTINCT tg_user_id) FROM user_identities WHERE tg_user_id IS NOT NULL`},
		{&stats.TotalSessions, `SELECT COUNT(*) FROM site_sessions`},
		{&stats.TotalEvents, `SELECT COUNT(*) FROM site_events`},
		{&stats.DiagnosticsCompleted, `SELECT COUNT(*) FROM diagnostics_results`},
		{&stats.ActiveSessions, `SELECT COUNT(*) FROM site_sessions WHERE session_end IS NULL`},
	}
	for _, q := range queries {
		n, err := r.count(ctx, q.query)
		if err != nil {
			r.Log.Error("failed to get site stats", "error", err)
			return nil, fmt.Errorf("failed to get site stats: %w", err)
		}
		*q.dest = n
	}
	return stats, nil
}

// rangeFilter условие на колонку времени для необязательного интервала (границы включительно)
func rangeFilter(column string, tr domain.TimeRange) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if tr.From != nil {
		conds = append(conds, column+" >= ?")
		args = append(args, tr.From.UTC())
	}
	if tr.To != nil {
		conds = append(conds, column+" <= ?")
		args = append(args, tr.To.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}

// Funnel уникальные пользователи на каждом этапе; у каждого этапа своя колонка времени
func (r *Repository) Funnel(ctx context.Context, tr domain.TimeRange) (*domain.Funnel, error) {
	funnel := &domain.Funnel{From: tr.From, To: tr.To}

	sessionsFilter, sessionsArgs := rangeFilter("session_start", tr)
	eventsFilter, eventsArgs := rangeFilter("created_at", tr)
	diagnosticsFilter, diagnosticsArgs := rangeFilter("completed_at", tr)

	var err error
	funnel.Visitors, err = r.count(ctx,
		`SELECT COUNT(DISTINCT tg_user_id) FROM site_sessions WHERE tg_user_id IS NOT NULL`+sessionsFilter,
		sessionsArgs...)
	if err != nil {
		return nil, r.funnelFail("visitors", err)
	}

	engagedArgs := append(append([]interface{}{}, sessionsArgs...), eventsArgs...)
	funnel.Engaged, err = r.count(ctx, `SELECT COUNT(*) FROM (
			SELECT tg_user_id FROM site_sessions WHERE tg_user_id IS NOT NULL`+sessionsFilter+`
			GROUP BY tg_user_id HAVING COUNT(*) > 1
			UNION
			SELECT tg_user_id FROM site_events WHERE tg_user_id IS NOT NULL`+eventsFilter+`
			GROUP BY tg_user_id HAVING COUNT(*) >= 5
		) engaged`, engagedArgs...)
	if err != nil {
		return nil, r.funnelFail("engaged", err)
	}

	funnel.Diagnosed, err = r.count(ctx,
		`SELECT COUNT(DISTINCT tg_user_id) FROM diagnostics_results WHERE tg_user_id IS NOT NULL`+diagnosticsFilter,
		diagnosticsArgs...)
	if err != nil {
		return nil, r.funnelFail("diagnosed", err)
	}

	funnel.Converted, err = r.count(ctx,
		`SELECT COUNT(DISTINCT tg_user_id) FROM cta_clicks WHERE tg_user_id IS NOT NULL`+eventsFilter,
		eventsArgs...)
	if err != nil {
		return nil, r.funnelFail("converted", err)
	}
	return funnel, nil
}

func (r *Repository) funnelFail(stage string, err error) error {
	r.Log.Error("failed to get conversion funnel", "error", err, "stage", stage)
	return fmt.Errorf("failed to get funnel stage %s: %w", stage, err)
}

// ActiveUsers пользователи с событием или сессией начиная с since
func (r *Repository) ActiveUsers(ctx context.Context, since time.Time) ([]int64, error) {
	query := `SELECT tg_user_id FROM site_events WHERE tg_user_id IS NOT NULL AND created_at >= ?
		UNION
		SELECT tg_user_id FROM site_sessions WHERE tg_user_id IS NOT NULL AND session_start >= ?
		ORDER BY tg_user_id`

	users := make([]int64, 0)
	if err := r.db.Select(ctx, &users, query, since.UTC(), since.UTC()); err != nil {
		r.Log.Error("failed to list active users", "error", err, "since", since)
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

// TableStats количество строк по таблицам и последние события как есть
func (r *Repository) TableStats(ctx context.Context, recent int) (*domain.TableStats, error) {
	stats := &domain.TableStats{Tables: make(map[string]int64, len(statsTables))}
	for _, table := range statsTables {
		n, err := r.count(ctx, "SELECT COUNT(*) FROM "+table)
		if err != nil {
			r.Log.Error("failed to count table rows", "error", err, "table", table)
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats.Tables[table] = n
	}

	rows, err := r.db.QueryRows(ctx, `SELECT id, session_id, tg_user_id, event_type, event_name, created_at
		FROM site_events ORDER BY created_at DESC, id DESC LIMIT ?`, recent)
	if err != nil {
		r.Log.Error("failed to list recent events", "error", err)
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	stats.RecentEvents = rows
	return stats, nil
}
