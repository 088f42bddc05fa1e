package domain

import "time"

// JourneyStep шаг пути пользователя в персональном отчёте
type JourneyStep struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Details   Payload   `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Виды шагов пути
const (
	JourneyMiniappOpen = "miniapp_open"
	JourneyContent     = "content"
	JourneyAI          = "ai"
	JourneyDiagnostics = "diagnostics"
	JourneyGame        = "game"
	JourneyCTA         = "cta"
)

// PersonalReport персональный отчёт посетителя по cookie_id
type PersonalReport struct {
	CookieID               string           `json:"cookie_id"`
	User                   *LinkedUser      `json:"user,omitempty"`
	Journey                []JourneyStep    `json:"journey"`
	Segmentation           *Segmentation    `json:"segmentation,omitempty"`
	Recommendations        []Recommendation `json:"recommendations,omitempty"`
	SessionDurationSeconds int64            `json:"session_duration_seconds"`
	GeneratedAt            time.Time        `json:"generated_at"`
	ArchiveURL             string           `json:"archive_url,omitempty"`
}

// ReportArchive сохранённый снимок отчёта в объектном хранилище
type ReportArchive struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
