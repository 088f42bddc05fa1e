package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// rawPayloadKey ключ, под которым сохраняется исходная строка, если JSON не распарсился
const rawPayloadKey = "_raw"

// Payload структурированные метаданные события (JSON-колонки metadata, custom_data и т.п.)
type Payload map[string]any

// Value сериализует payload в JSON-текст. Пустой payload пишется как NULL
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// Scan читает JSON из БД. Битый JSON не ломает чтение: строка сохраняется как есть под ключом _raw
func (p *Payload) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported payload type %T", src)
	}

	if len(data) == 0 {
		*p = nil
		return nil
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		*p = Payload{rawPayloadKey: string(data)}
		return nil
	}
	*p = out
	return nil
}

// Raw возвращает исходную строку, если payload не удалось распарсить
func (p Payload) Raw() (string, bool) {
	if len(p) != 1 {
		return "", false
	}
	raw, ok := p[rawPayloadKey].(string)
	return raw, ok
}

func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) Float(key string) float64 {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// Compact убирает nil-значения, чтобы в БД не попадали пустые ключи
func (p Payload) Compact() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		switch ptr := v.(type) {
		case *string:
			if ptr == nil {
				continue
			}
			v = *ptr
		case *int:
			if ptr == nil {
				continue
			}
			v = *ptr
		case *int64:
			if ptr == nil {
				continue
			}
			v = *ptr
		case *float64:
			if ptr == nil {
				continue
			}
			v = *ptr
		}
		out[k] = v
	}
	return out
}
