package domain

import "time"

// Типы, имена и категории событий
const (
	EventTypeVisit      = "visit"
	EventTypeApp        = "app"
	EventTypeContent    = "content"
	EventTypeAI         = "ai"
	EventTypeDiagnostic = "diagnostic"
	EventTypeGame       = "game"
	EventTypeCTA        = "cta"

	EventNameSourceVisit         = "source_visit"
	EventNameMiniappOpen         = "miniapp_open"
	EventNameContentView         = "content_view"
	EventNameAIInteraction       = "ai_interaction"
	EventNameDiagnosticCompleted = "diagnostic_completed"
	EventNameCTAClick            = "cta_click"
	EventNamePersonalPathView    = "personal_path_view"

	EventCategoryAcquisition = "acquisition"
	EventCategoryEngagement  = "engagement"
	EventCategoryConversion  = "conversion"
)

// Event неизменяемый факт действия пользователя (таблица site_events)
type Event struct {
	ID               int64     `json:"id" db:"id"`
	SessionID        int64     `json:"session_id" db:"session_id"`
	TgUserID         *int64    `json:"tg_user_id,omitempty" db:"tg_user_id"`
	EventType        string    `json:"event_type" db:"event_type"`
	EventName        string    `json:"event_name" db:"event_name"`
	Page             *string   `json:"page,omitempty" db:"page"`
	Metadata         Payload   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	EventCategory    *string   `json:"event_category,omitempty" db:"event_category"`
	EventSubtype     *string   `json:"event_subtype,omitempty" db:"event_subtype"`
	ElementID        *string   `json:"element_id,omitempty" db:"element_id"`
	ElementType      *string   `json:"element_type,omitempty" db:"element_type"`
	Section          *string   `json:"section,omitempty" db:"section"`
	ScrollDepth      *int64    `json:"scroll_depth,omitempty" db:"scroll_depth"`
	TimeSpent        *int64    `json:"time_spent,omitempty" db:"time_spent"`
	InteractionCount *int64    `json:"interaction_count,omitempty" db:"interaction_count"`
	PreviousEventID  *int64    `json:"previous_event_id,omitempty" db:"previous_event_id"`
	StepNumber       *int64    `json:"step_number,omitempty" db:"step_number"`
	CompletionRate   *float64  `json:"completion_rate,omitempty" db:"completion_rate"`
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	CustomData       Payload   `json:"custom_data,omitempty" db:"custom_data"`
}

// EventWithSession событие с данными сессии (выборка по пользователю)
type EventWithSession struct {
	Event
	CookieID     *string    `json:"cookie_id,omitempty" db:"cookie_id"`
	SessionStart *time.Time `json:"session_start,omitempty" db:"session_start"`
}

// Fact узкая запись в специализированную таблицу, пишется в одной транзакции с событием
type Fact interface {
	factTable() string
}

// ContentView просмотр контента (content_views)
type ContentView struct {
	SessionID      int64     `db:"session_id"`
	TgUserID       *int64    `db:"tg_user_id"`
	CookieID       *string   `db:"cookie_id"`
	ContentType    string    `db:"content_type"`
	ContentID      string    `db:"content_id"`
	ContentTitle   *string   `db:"content_title"`
	Section        *string   `db:"section"`
	TimeSpent      *int64    `db:"time_spent"`
	ScrollDepth    *int64    `db:"scroll_depth"`
	CompletionRate *float64  `db:"completion_rate"`
	ViewedAt       time.Time `db:"viewed_at"`
}

func (ContentView) factTable() string { return "content_views" }

// AIInteraction диалог с AI-помощником (ai_interactions)
type AIInteraction struct {
	SessionID           int64      `db:"session_id"`
	TgUserID            *int64     `db:"tg_user_id"`
	CookieID            *string    `db:"cookie_id"`
	MessagesCount       int64      `db:"messages_count"`
	Topics              Topics     `db:"topics"`
	InteractionDuration *int64     `db:"interaction_duration"`
	ConversationType    string     `db:"conversation_type"`
	StartedAt           time.Time  `db:"started_at"`
	EndedAt             *time.Time `db:"ended_at"`
}

func (AIInteraction) factTable() string { return "ai_interactions" }

// CTAClick клик по призыву к действию (cta_clicks)
type CTAClick struct {
	SessionID    int64     `db:"session_id"`
	TgUserID     *int64    `db:"tg_user_id"`
	CookieID     *string   `db:"cookie_id"`
	CTAType      string    `db:"cta_type"`
	CTAText      *string   `db:"cta_text"`
	CTALocation  *string   `db:"cta_location"`
	PreviousStep *string   `db:"previous_step"`
	StepDuration *int64    `db:"step_duration"`
	CreatedAt    time.Time `db:"created_at"`
}

func (CTAClick) factTable() string { return "cta_clicks" }

// GameAction действие в игровом модуле (game_actions)
type GameAction struct {
	SessionID   int64     `db:"session_id"`
	TgUserID    *int64    `db:"tg_user_id"`
	CookieID    *string   `db:"cookie_id"`
	GameType    string    `db:"game_type"`
	ActionType  string    `db:"action_type"`
	ActionData  Payload   `db:"action_data"`
	Score       *int64    `db:"score"`
	Achievement *string   `db:"achievement"`
	Duration    *int64    `db:"duration"`
	CreatedAt   time.Time `db:"created_at"`
}

func (GameAction) factTable() string { return "game_actions" }

// FactTable имя таблицы, в которую пишется факт
func FactTable(f Fact) string {
	return f.factTable()
}
