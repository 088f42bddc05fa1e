package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Topics список тем AI-диалога, хранится JSON-массивом
type Topics []string

func (t Topics) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("marshal topics: %w", err)
	}
	return string(data), nil
}

func (t *Topics) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported topics type %T", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		*t = nil
		return nil
	}
	*t = out
	return nil
}
