// Package timex holds time helpers shared by client and server: a JSON-aware
// Duration for config files and the ISO-8601 timestamp format every synced
// row carries.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// ISO8601 is the timestamp layout stored in updated_at / created_at columns
// and exchanged over the sync protocol. Millisecond precision, always UTC,
// so string comparison orders the same way as time comparison.
const ISO8601 = "2006-01-02T15:04:05.000Z"

// DateOnly is the calendar-day layout used by entry dates.
const DateOnly = "2006-01-02"

// NowISO returns the current UTC time in ISO8601 form.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO renders t in ISO8601 form (converted to UTC).
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISO8601)
}

// ParseISO parses an ISO8601 timestamp. RFC3339 variants with other
// precisions are accepted as a fallback.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(ISO8601, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Duration is a time.Duration that unmarshals from JSON either as a string
// ("3s", "1m30s") or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
