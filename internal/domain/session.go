package domain

import "time"

// Session визит на сайт / в MiniApp (таблица site_sessions)
type Session struct {
	ID               int64      `json:"id" db:"id"`
	CookieID         string     `json:"cookie_id" db:"cookie_id"`
	TgUserID         *int64     `json:"tg_user_id,omitempty" db:"tg_user_id"`
	SessionStart     time.Time  `json:"session_start" db:"session_start"`
	SessionEnd       *time.Time `json:"session_end,omitempty" db:"session_end"`
	UserAgent        *string    `json:"user_agent,omitempty" db:"user_agent"`
	IP               *string    `json:"ip,omitempty" db:"ip"`
	Source           *string    `json:"source,omitempty" db:"source"`
	UTMParams        Payload    `json:"utm_params,omitempty" db:"utm_params"`
	UTMSource        *string    `json:"utm_source,omitempty" db:"utm_source"`
	UTMMedium        *string    `json:"utm_medium,omitempty" db:"utm_medium"`
	UTMCampaign      *string    `json:"utm_campaign,omitempty" db:"utm_campaign"`
	UTMTerm          *string    `json:"utm_term,omitempty" db:"utm_term"`
	UTMContent       *string    `json:"utm_content,omitempty" db:"utm_content"`
	Referrer         *string    `json:"referrer,omitempty" db:"referrer"`
	DeviceType       *string    `json:"device_type,omitempty" db:"device_type"`
	DeviceModel      *string    `json:"device_model,omitempty" db:"device_model"`
	Browser          *string    `json:"browser,omitempty" db:"browser"`
	OS               *string    `json:"os,omitempty" db:"os"`
	ScreenResolution *string    `json:"screen_resolution,omitempty" db:"screen_resolution"`
	GeoCountry       *string    `json:"geo_country,omitempty" db:"geo_country"`
	GeoCity          *string    `json:"geo_city,omitempty" db:"geo_city"`
	GeoRegion        *string    `json:"geo_region,omitempty" db:"geo_region"`
	PageID           *string    `json:"page_id,omitempty" db:"page_id"`
	EntryPage        *string    `json:"entry_page,omitempty" db:"entry_page"`
	ExitPage         *string    `json:"exit_page,omitempty" db:"exit_page"`
	SessionDuration  *int64     `json:"session_duration,omitempty" db:"session_duration"`
	PageViews        int64      `json:"page_views" db:"page_views"`
	EventsCount      int64      `json:"events_count" db:"events_count"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// IsActive сессия ещё не закрыта
func (s *Session) IsActive() bool {
	return s.SessionEnd == nil
}

// SessionMetadata клиентские данные при открытии сессии
type SessionMetadata struct {
	UserAgent        *string `json:"user_agent,omitempty"`
	IP               *string `json:"ip,omitempty"`
	Source           *string `json:"source,omitempty"`
	UTMParams        Payload `json:"utm_params,omitempty"`
	UTMSource        *string `json:"utm_source,omitempty"`
	UTMMedium        *string `json:"utm_medium,omitempty"`
	UTMCampaign      *string `json:"utm_campaign,omitempty"`
	UTMTerm          *string `json:"utm_term,omitempty"`
	UTMContent       *string `json:"utm_content,omitempty"`
	Referrer         *string `json:"referrer,omitempty"`
	DeviceType       *string `json:"device_type,omitempty"`
	DeviceModel      *string `json:"device_model,omitempty"`
	Browser          *string `json:"browser,omitempty"`
	OS               *string `json:"os,omitempty"`
	ScreenResolution *string `json:"screen_resolution,omitempty"`
	GeoCountry       *string `json:"geo_country,omitempty"`
	GeoCity          *string `json:"geo_city,omitempty"`
	GeoRegion        *string `json:"geo_region,omitempty"`
	PageID           *string `json:"page_id,omitempty"`
	EntryPage        *string `json:"entry_page,omitempty"`
}

// sessionPatchFields поля site_sessions, которые разрешено менять через patch.
// events_count сюда не входит: он меняется только при записи события
var sessionPatchFields = map[string]struct{}{
	"source":            {},
	"utm_source":        {},
	"utm_medium":        {},
	"utm_campaign":      {},
	"utm_term":          {},
	"utm_content":       {},
	"referrer":          {},
	"device_type":       {},
	"device_model":      {},
	"browser":           {},
	"os":                {},
	"screen_resolution": {},
	"geo_country":       {},
	"geo_city":          {},
	"geo_region":        {},
	"page_id":           {},
	"entry_page":        {},
	"exit_page":         {},
	"session_duration":  {},
	"page_views":        {},
}

// SessionPatch частичное обновление метаданных сессии
type SessionPatch map[string]any

// Allowed оставляет только разрешённые поля, неизвестные молча отбрасываются
func (p SessionPatch) Allowed() SessionPatch {
	out := make(SessionPatch, len(p))
	for k, v := range p {
		if _, ok := sessionPatchFields[k]; ok {
			out[k] = v
		}
	}
	return out
}
