package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a numeric request field that accepts either a JSON number or a string
// The raw text is kept so the domain layer decides whether it is a valid number
type Number string

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	*n = Number(data)
	return nil
}

// MarshalJSON writes the number unquoted when it looks numeric
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(n), 64); err == nil && json.Valid([]byte(n)) {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

// IsZero reports whether the field was missing, null or empty
func (n Number) IsZero() bool {
	return n == ""
}
