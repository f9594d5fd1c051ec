package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringArray maps a PostgreSQL text[] column (labels, assignees).
type StringArray []string

// Contains reports whether the array holds the given value.
func (sa StringArray) Contains(value string) bool {
	for _, s := range sa {
		if s == value {
			return true
		}
	}
	return false
}

// Normalize drops duplicates, keeping first-occurrence order. Labels and
// assignees are sets; a nil input becomes an empty, storable array.
func (sa StringArray) Normalize() StringArray {
	out := make(StringArray, 0, len(sa))
	for _, s := range sa {
		if !out.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

func (sa *StringArray) Scan(value interface{}) error {
	if value == nil {
		*sa = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return sa.parseArray(string(v))
	case string:
		return sa.parseArray(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
}

func (sa StringArray) Value() (driver.Value, error) {
	if sa == nil {
		return nil, nil
	}

	if len(sa) == 0 {
		return "{}", nil
	}

	// Array literal with every element quoted; a literal quote doubles.
	var escaped []string
	for _, s := range sa {
		escaped = append(escaped, `"`+strings.ReplaceAll(s, `"`, `""`)+`"`)
	}

	return "{" + strings.Join(escaped, ",") + "}", nil
}

// parseArray reads a text[] literal. Elements may be bare or quoted; commas
// split only outside quotes, and "" inside a quoted element is one quote.
func (sa *StringArray) parseArray(s string) error {
	if s == "" || s == "{}" {
		*sa = []string{}
		return nil
	}

	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("invalid array format: %s", s)
	}

	content := s[1 : len(s)-1]
	if content == "" {
		*sa = []string{}
		return nil
	}

	var result []string
	var elem strings.Builder
	var quoted bool
	var i int

	for i < len(content) {
		char := content[i]

		switch char {
		case '"':
			if quoted {
				if i+1 < len(content) && content[i+1] == '"' {
					elem.WriteByte('"')
					i += 2
					continue
				}
				quoted = false
			} else {
				quoted = true
			}
		case ',':
			if !quoted {
				result = append(result, elem.String())
				elem.Reset()
				i++
				continue
			}
			elem.WriteByte(char)
		default:
			elem.WriteByte(char)
		}
		i++
	}

	if elem.Len() > 0 || len(result) > 0 {
		result = append(result, elem.String())
	}

	*sa = result
	return nil
}
