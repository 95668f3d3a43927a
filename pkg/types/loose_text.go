package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LooseText accepts a JSON string or number and keeps its textual form. Clients
// send prices either way; the value is stored exactly as written.
type LooseText struct {
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler. Null, "" and numeric zero collapse
// to an absent value.
func (l *LooseText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	l.Value = nil
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		l.Value = &s
		return nil
	case 'f', 't', '{', '[':
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return err
	}
	if f, err := num.Float64(); err == nil && f == 0 {
		return nil
	}
	s := strings.TrimSpace(num.String())
	l.Value = &s
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l LooseText) MarshalJSON() ([]byte, error) {
	if l.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*l.Value)
}

// Ptr returns the stored text or nil.
func (l LooseText) Ptr() *string {
	return l.Value
}
