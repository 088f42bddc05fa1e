package domain

import "time"

// Segment поведенческий сегмент пользователя, вычисляется на лету и не хранится
type Segment string

const (
	SegmentNewcomer  Segment = "newcomer"
	SegmentEngaged   Segment = "engaged"
	SegmentConverter Segment = "converter"
	SegmentLoyal     Segment = "loyal"
)

func (s Segment) IsValid() bool {
	switch s {
	case SegmentNewcomer, SegmentEngaged, SegmentConverter, SegmentLoyal:
		return true
	default:
		return false
	}
}

// Segments все сегменты в порядке воронки
var Segments = []Segment{SegmentNewcomer, SegmentEngaged, SegmentConverter, SegmentLoyal}

type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// Rank порядковый номер уровня вовлечённости
func (l EngagementLevel) Rank() int {
	switch l {
	case EngagementMedium:
		return 1
	case EngagementHigh:
		return 2
	default:
		return 0
	}
}

type ConversionPotential string

const (
	ConversionLow       ConversionPotential = "low"
	ConversionMedium    ConversionPotential = "medium"
	ConversionHigh      ConversionPotential = "high"
	ConversionConverted ConversionPotential = "converted"
)

// Временные интервалы активности
const (
	HourMorning   = "morning"
	HourAfternoon = "afternoon"
	HourEvening   = "evening"
	HourNight     = "night"
)

// Частота визитов
const (
	VisitFrequent   = "frequent"
	VisitRegular    = "regular"
	VisitOccasional = "occasional"
)

// SegmentCounts агрегаты пользователя, на которых строится классификация
type SegmentCounts struct {
	SessionCount            int64 `json:"session_count"`
	EventCount              int64 `json:"event_count"`
	HasCompletedDiagnostics bool  `json:"has_completed_diagnostics"`
}

// Segmentation результат классификации пользователя
type Segmentation struct {
	Segment              Segment             `json:"segment"`
	EngagementLevel      EngagementLevel     `json:"engagement_level"`
	ConversionPotential  ConversionPotential `json:"conversion_potential"`
	ContentPreference    []string            `json:"content_preference"`
	BehaviorPatterns     []string            `json:"behavior_patterns"`
	LastActivity         *time.Time          `json:"last_activity,omitempty"`
	TotalSessions        int64               `json:"total_sessions"`
	TotalEvents          int64               `json:"total_events"`
	DiagnosticsCompleted bool                `json:"diagnostics_completed"`
}

// AsMap плоское представление для сравнения с критериями отбора
func (s Segmentation) AsMap() map[string]any {
	prefs := s.ContentPreference
	if prefs == nil {
		prefs = []string{}
	}
	patterns := s.BehaviorPatterns
	if patterns == nil {
		patterns = []string{}
	}
	var lastActivity any
	if s.LastActivity != nil {
		lastActivity = *s.LastActivity
	}
	return map[string]any{
		"segment":               string(s.Segment),
		"engagement_level":      string(s.EngagementLevel),
		"conversion_potential":  string(s.ConversionPotential),
		"content_preference":    prefs,
		"behavior_patterns":     patterns,
		"last_activity":         lastActivity,
		"total_sessions":        s.TotalSessions,
		"total_events":          s.TotalEvents,
		"diagnostics_completed": s.DiagnosticsCompleted,
	}
}

// Recommendation персональная рекомендация по сегменту
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Message  string `json:"message"`
}

// SegmentInsights сводка по сегменту
type SegmentInsights struct {
	Segment          Segment        `json:"segment"`
	UsersCount       int            `json:"users_count"`
	AvgSessions      float64        `json:"avg_sessions"`
	AvgEvents        float64        `json:"avg_events"`
	ConversionRate   float64        `json:"conversion_rate"`
	TopSources       []CountedValue `json:"top_sources"`
	TopContentTypes  []CountedValue `json:"top_content_types"`
	BehaviorPatterns []CountedValue `json:"behavior_patterns"`
}

// CountedValue значение и число его повторений
type CountedValue struct {
	Value string `json:"value" db:"value"`
	Count int64  `json:"count" db:"count"`
}

// AutomatedActionsResult счётчики автоматических рассылок
type AutomatedActionsResult struct {
	WelcomeMessages     int `json:"welcome_messages"`
	DiagnosticReminders int `json:"diagnostic_reminders"`
	PersonalOffers      int `json:"personal_offers"`
	Failed              int `json:"failed"`
}

// ContentSuggestion подсказка по контенту на основе предпочтений
type ContentSuggestion struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// UserRecommendations рекомендации для пользователя
type UserRecommendations struct {
	UserID             int64               `json:"user_id"`
	Segment            Segment             `json:"segment"`
	EngagementLevel    EngagementLevel     `json:"engagement_level"`
	Recommendations    []Recommendation    `json:"recommendations"`
	NextBestActions    []string            `json:"next_best_actions"`
	ContentSuggestions []ContentSuggestion `json:"content_suggestions"`
}

// SegmentRefresh результат пересчёта сегментов активных пользователей
type SegmentRefresh struct {
	TotalProcessed int             `json:"total_processed"`
	Segments       map[Segment]int `json:"segments"`
}
