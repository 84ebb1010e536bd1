package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing record dates.
var dateLayouts = []string{ //nolint:gochecknoglobals // read-only parse table
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// Date is an optional calendar date. The zero value means unknown.
// Raw keeps the source text so unparseable values can be reported.
type Date struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// NewDate builds a valid date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Time: t, Valid: true, Raw: t.Format("2006-01-02")}
}

// ParseDate never fails: empty input yields an unknown date, and input that
// matches no layout yields an unknown date with Raw set.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{Time: t.UTC(), Valid: true, Raw: s}
		}
	}
	return Date{Raw: s}
}

// Unparsed reports whether source text was present but not understood.
func (d Date) Unparsed() bool {
	return !d.Valid && d.Raw != ""
}

// Before reports whether d is a known date strictly before t.
func (d Date) Before(t time.Time) bool {
	return d.Valid && d.Time.Before(t)
}

// String renders the date as YYYY-MM-DD, or the raw text when unknown.
func (d Date) String() string {
	if !d.Valid {
		return d.Raw
	}
	return d.Time.Format("2006-01-02")
}

// UnmarshalJSON accepts a string, null, or an empty value.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// numbers, objects: keep the text so the caller can warn
		*d = Date{Raw: string(b)}
		return nil //nolint:nilerr // unknown date is the documented outcome
	}
	*d = ParseDate(s)
	return nil
}

// MarshalJSON writes the date as YYYY-MM-DD or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format("2006-01-02"))
}
