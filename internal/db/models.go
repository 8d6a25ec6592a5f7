package db

import (
	"encoding/json"
	"fmt"
	"time"
)

type Snapshot struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	TemplateCount int       `json:"template_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// FacetCount is how many templates carry a tag or framework.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nowUTC() time.Time {
	return time.Now().UTC()
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		ts = nowUTC()
	}
	return ts.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return ts, nil
}

func encodeStringSlice(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string slice: %w", err)
	}
	return string(buf), nil
}

func decodeStringSlice(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string slice: %w", err)
	}
	return values, nil
}
