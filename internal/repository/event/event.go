package eventRepo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	ports "github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

const tableName = "site_events"

var eventColumns = []string{
	"id", "session_id", "tg_user_id", "event_type", "event_name", "page", "metadata", "created_at",
	"event_category", "event_subtype", "element_id", "element_type", "section", "scroll_depth",
	"time_spent", "interaction_count", "previous_event_id", "step_number", "completion_rate",
	"error_message", "custom_data",
}

// запросы вставки фактов в специализированные таблицы, поля по db-тегам
var factInserts = map[string]string{
	"content_views": `INSERT INTO content_views (session_id, tg_user_id, cookie_id, content_type, content_id,
		content_title, section, time_spent, scroll_depth, completion_rate, viewed_at)
		VALUES (:session_id, :tg_user_id, :cookie_id, :content_type, :content_id,
		:content_title, :section, :time_spent, :scroll_depth, :completion_rate, :viewed_at)`,
	"ai_interactions": `INSERT INTO ai_interactions (session_id, tg_user_id, cookie_id, messages_count, topics,
		interaction_duration, conversation_type, started_at, ended_at)
		VALUES (:session_id, :tg_user_id, :cookie_id, :messages_count, :topics,
		:interaction_duration, :conversation_type, :started_at, :ended_at)`,
	"cta_clicks": `INSERT INTO cta_clicks (session_id, tg_user_id, cookie_id, cta_type, cta_text,
		cta_location, previous_step, step_duration, created_at)
		VALUES (:session_id, :tg_user_id, :cookie_id, :cta_type, :cta_text,
		:cta_location, :previous_step, :step_duration, :created_at)`,
	"game_actions": `INSERT INTO game_actions (session_id, tg_user_id, cookie_id, game_type, action_type,
		action_data, score, achievement, duration, created_at)
		VALUES (:session_id, :tg_user_id, :cookie_id, :game_type, :action_type,
		:action_data, :score, :achievement, :duration, :created_at)`,
}

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

func New(db persistence.Persistence, log *slog.Logger) ports.IEventRepo {
	return &Repository{db: db, Log: log}
}

func prefixed(alias string) string {
	cols := make([]string, len(eventColumns))
	for i, c := range eventColumns {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// InsertTx добавляет строку в журнал; счётчик сессии обновляет вызывающий в той же транзакции
func (r *Repository) InsertTx(ctx context.Context, q persistence.Querier, e *domain.Event) (int64, error) {
	insertCols := eventColumns[1:]
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(insertCols)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, tableName, strings.Join(insertCols, ", "), placeholders)

	id, err := q.InsertReturningID(ctx, query,
		e.SessionID,
		e.TgUserID,
		e.EventType,
		e.EventName,
		e.Page,
		e.Metadata,
		e.CreatedAt,
		e.EventCategory,
		e.EventSubtype,
		e.ElementID,
		e.ElementType,
		e.Section,
		e.ScrollDepth,
		e.TimeSpent,
		e.InteractionCount,
		e.PreviousEventID,
		e.StepNumber,
		e.CompletionRate,
		e.ErrorMessage,
		e.CustomData)
	if err != nil {
		r.Log.Error("failed to insert event",
			"error", err,
			"session_id", e.SessionID,
			"event_type", e.EventType,
			"event_name", e.EventName)
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	e.ID = id
	r.Log.Debug("event inserted", "id", id, "session_id", e.SessionID, "event_name", e.EventName)
	return id, nil
}

func (r *Repository) InsertFactTx(ctx context.Context, q persistence.Querier, fact domain.Fact) error {
	table := domain.FactTable(fact)
	query, ok := factInserts[table]
	if !ok {
		return fmt.Errorf("no insert for fact table %s", table)
	}

	if err := q.NamedExec(ctx, query, fact); err != nil {
		r.Log.Error("failed to insert fact", "error", err, "table", table)
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	r.Log.Debug("fact inserted", "table", table)
	return nil
}

// ListByUser последние события пользователя вместе с cookie_id и началом сессии
func (r *Repository) ListByUser(ctx context.Context, tgUserID int64, limit int) ([]domain.EventWithSession, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s, s.cookie_id, s.session_start
		FROM %s e JOIN site_sessions s ON s.id = e.session_id
		WHERE e.tg_user_id = ?
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT ?`, prefixed("e"), tableName)

	events := make([]domain.EventWithSession, 0)
	if err := r.db.Select(ctx, &events, query, tgUserID, limit); err != nil {
		r.Log.Error("failed to list user events", "error", err, "tg_user_id", tgUserID)
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	return events, nil
}

// ListBySession события сессии в порядке вставки
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE session_id = ? ORDER BY created_at, id`,
		strings.Join(eventColumns, ", "), tableName)

	events := make([]domain.Event, 0)
	if err := r.db.Select(ctx, &events, query, sessionID); err != nil {
		r.Log.Error("failed to list session events", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to list session events: %w", err)
	}
	return events, nil
}

func (r *Repository) ListByCookie(ctx context.Context, cookieID string) ([]domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s e JOIN site_sessions s ON s.id = e.session_id
		WHERE s.cookie_id = ?
		ORDER BY e.created_at, e.id`, prefixed("e"), tableName)

	events := make([]domain.Event, 0)
	if err := r.db.Select(ctx, &events, query, cookieID); err != nil {
		r.Log.Error("failed to list cookie events", "error", err, "cookie_id", cookieID)
		return nil, fmt.Errorf("failed to list cookie events: %w", err)
	}
	return events, nil
}

func (r *Repository) CountBySession(ctx context.Context, sessionID int64) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE session_id = ?`, tableName)
	if err := r.db.Get(ctx, &count, query, sessionID); err != nil {
		r.Log.Error("failed to count session events", "error", err, "session_id", sessionID)
		return 0, fmt.Errorf("failed to count session events: %w", err)
	}
	return count, nil
}
