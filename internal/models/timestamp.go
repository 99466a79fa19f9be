package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat records how a timestamp was encoded on the wire
type TimestampFormat int

const (
	TimestampMissing TimestampFormat = iota
	TimestampISO
	TimestampSeconds
	TimestampMillis
	TimestampInvalid
)

// Timestamp accepts ISO-8601 strings, {seconds, nanoseconds} objects (also
// the underscore-prefixed variant) and epoch milliseconds.
type Timestamp struct {
	Time   time.Time
	Format TimestampFormat
}

type secondsTimestamp struct {
	Seconds           *int64 `json:"seconds"`
	Nanoseconds       int64  `json:"nanoseconds"`
	LegacySeconds     *int64 `json:"_seconds"`
	LegacyNanoseconds int64  `json:"_nanoseconds"`
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t as an ISO timestamp
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Format: TimestampISO}
}

// Valid reports whether the timestamp holds a usable time
func (t Timestamp) Valid() bool {
	return t.Format != TimestampMissing && t.Format != TimestampInvalid
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid timestamp string: %w", err)
		}
		if s == "" {
			return nil
		}
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				t.Format = TimestampISO
				return nil
			}
		}
		t.Format = TimestampInvalid
		return nil

	case '{':
		var raw secondsTimestamp
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid timestamp object: %w", err)
		}
		switch {
		case raw.Seconds != nil:
			t.Time = time.Unix(*raw.Seconds, raw.Nanoseconds).UTC()
			t.Format = TimestampSeconds
		case raw.LegacySeconds != nil:
			t.Time = time.Unix(*raw.LegacySeconds, raw.LegacyNanoseconds).UTC()
			t.Format = TimestampSeconds
		default:
			t.Format = TimestampInvalid
		}
		return nil

	default:
		var ms float64
		if err := json.Unmarshal(data, &ms); err != nil {
			t.Format = TimestampInvalid
			return nil
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		t.Format = TimestampMillis
		return nil
	}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	if t.Format == TimestampSeconds {
		return json.Marshal(map[string]int64{
			"seconds":     t.Time.Unix(),
			"nanoseconds": int64(t.Time.Nanosecond()),
		})
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
