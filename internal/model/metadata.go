package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is an opaque JSON bag stored alongside every entity. The store
// passes it through unchanged and never inspects its contents.
type Metadata struct {
	json.RawMessage
}

func (m *Metadata) Unmarshal(v interface{}) error {
	if len(m.RawMessage) == 0 {
		return nil
	}
	return json.Unmarshal(m.RawMessage, v)
}

func (m *Metadata) Marshal(v interface{}) error {
	if v == nil {
		m.RawMessage = nil
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.RawMessage = data
	return nil
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		m.RawMessage = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			m.RawMessage = nil
			return nil
		}
		m.RawMessage = json.RawMessage(v)
	case string:
		if v == "" {
			m.RawMessage = nil
			return nil
		}
		m.RawMessage = json.RawMessage(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}

	return nil
}

func (m Metadata) Value() (driver.Value, error) {
	if len(m.RawMessage) == 0 {
		return nil, nil
	}
	return []byte(m.RawMessage), nil
}

func (m Metadata) String() string {
	if len(m.RawMessage) == 0 {
		return "null"
	}
	return string(m.RawMessage)
}
