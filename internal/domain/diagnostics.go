package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DiagnosticsDocument JSON-документ результата диагностики
type DiagnosticsDocument map[string]any

// Value сериализует документ в канонический JSON (ключи отсортированы encoding/json)
func (d DiagnosticsDocument) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("marshal diagnostics document: %w", err)
	}
	return string(data), nil
}

func (d *DiagnosticsDocument) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported diagnostics document type %T", src)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal diagnostics document: %w", err)
	}
	*d = out
	return nil
}

// DiagnosticsResult одна запись diagnostics_results, ключ (tg_user_id, cookie_id)
type DiagnosticsResult struct {
	ID          int64               `json:"id" db:"id"`
	TgUserID    int64               `json:"tg_user_id" db:"tg_user_id"`
	CookieID    string              `json:"cookie_id,omitempty" db:"cookie_id"`
	Result      DiagnosticsDocument `json:"result" db:"result_json"`
	CompletedAt time.Time           `json:"completed_at" db:"completed_at"`
}
