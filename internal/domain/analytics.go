package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// UserAnalytics сводная статистика пользователя
type UserAnalytics struct {
	TgUserID             int64      `json:"tg_user_id"`
	TotalSessions        int64      `json:"total_sessions"`
	TotalEvents          int64      `json:"total_events"`
	LastSession          *time.Time `json:"last_session,omitempty"`
	DiagnosticsCompleted bool       `json:"diagnostics_completed"`
	IdentitiesCount      int64      `json:"identities_count"`
}

// SiteStats общая статистика сайта
type SiteStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalSessions        int64 `json:"total_sessions"`
	TotalEvents          int64 `json:"total_events"`
	DiagnosticsCompleted int64 `json:"diagnostics_completed"`
	ActiveSessions       int64 `json:"active_sessions"`
}

// Funnel воронка конверсии: уникальные пользователи на каждом этапе
type Funnel struct {
	Visitors  int64      `json:"visitors"`
	Engaged   int64      `json:"engaged"`
	Diagnosed int64      `json:"diagnosed"`
	Converted int64      `json:"converted"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
}

// TimeRange необязательный интервал [From, To)
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Row строка произвольной выборки: упорядоченные пары колонка -> значение
type Row []Column

type Column struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Get значение колонки по имени
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// MarshalJSON объект с колонками в порядке выборки
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableStats отладочная сводка по таблицам
type TableStats struct {
	Tables       map[string]int64 `json:"tables"`
	RecentEvents []Row            `json:"recent_events"`
}
