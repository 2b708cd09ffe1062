package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString accepts a JSON string or number. Models answer
// "Released": 1975 about as often as "Released": "1975".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// Tracklist is stored as a single display string. The analyzer may send a
// string, a list of strings, or a list of {position, title} objects.
type Tracklist string

func (t *Tracklist) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Tracklist(s)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			line, err := tracklistLine(item)
			if err != nil {
				return err
			}
			if line != "" {
				lines = append(lines, line)
			}
		}
		*t = Tracklist(strings.Join(lines, ", "))
		return nil
	default:
		return fmt.Errorf("unsupported tracklist value: %s", string(data))
	}
}

func tracklistLine(item json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	var obj map[string]any
	if err := json.Unmarshal(item, &obj); err != nil {
		return "", fmt.Errorf("unsupported tracklist entry: %s", string(item))
	}
	var parts []string
	for _, key := range []string{"position", "Position", "title", "Title", "duration", "Duration"} {
		if v, ok := obj[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " "), nil
}
