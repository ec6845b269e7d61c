package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB is a jsonb column holding free-form event metadata.
// A nil map is stored as {} so the column stays NOT NULL.
type JSONB map[string]interface{}

func (JSONB) GormDataType() string {
	return "jsonb"
}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j = JSONB{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported source type %T", src)
	}

	m := JSONB{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("jsonb: %w", err)
	}
	*j = m
	return nil
}
