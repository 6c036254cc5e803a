package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Entry is one form submission. Field values are keyed by the form's numeric
// field ids ("1", "3", ...), which the forms service returns as top-level
// JSON keys alongside the entry metadata.
type Entry struct {
	ID     int64
	Status string
	Fields map[string]string
}

// Field returns the value of the given field id, or "" when absent.
func (e Entry) Field(id string) string {
	return e.Fields[id]
}

// UnmarshalJSON splits the flat entry object into metadata and field values:
// numeric keys are field values, everything else is metadata.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Fields = make(map[string]string)
	for key, val := range raw {
		switch key {
		case "id":
			id, err := parseIntField(val)
			if err != nil {
				return fmt.Errorf("parsing entry id: %w", err)
			}
			e.ID = id
		case "status":
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return fmt.Errorf("parsing entry status: %w", err)
			}
			e.Status = s
		default:
			if !isFieldID(key) {
				continue
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				// Multi-input fields return objects; this form uses none.
				continue
			}
			e.Fields[key] = s
		}
	}
	return nil
}

// parseIntField accepts the id as either a JSON number or a quoted string;
// the forms service has returned both.
func parseIntField(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// isFieldID reports whether key looks like a field id ("4" or "4.3").
func isFieldID(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
