package model

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// timestampLayouts are tried in order. Layouts without a zone read as UTC,
// and fractional seconds are accepted after any seconds field.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamps the case service writes: RFC 3339,
// or ISO 8601 without a zone (Python's isoformat). An empty string is the
// zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// normalizeTimestamp rewrites the named field of a JSON object as RFC 3339
// so the record decodes into a time.Time. A null field is dropped.
func normalizeTimestamp(data []byte, key string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return data, nil
	}
	raw, ok := fields[key]
	if !ok {
		return data, nil
	}
	if string(raw) == "null" {
		delete(fields, key)
		return json.Marshal(fields)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if fields[key], err = json.Marshal(t); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON accepts zone-less timestamps.
func (c *Case) UnmarshalJSON(data []byte) error {
	data, err := normalizeTimestamp(data, "timestamp")
	if err != nil {
		return err
	}
	type plain Case
	return json.Unmarshal(data, (*plain)(c))
}

// UnmarshalJSON accepts zone-less timestamps, including the year-one value
// the service stores for entries never mentioned.
func (w *WatchlistEntry) UnmarshalJSON(data []byte) error {
	data, err := normalizeTimestamp(data, "lastMentioned")
	if err != nil {
		return err
	}
	type plain WatchlistEntry
	return json.Unmarshal(data, (*plain)(w))
}
