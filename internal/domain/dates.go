package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateKeyLayout is the layout of a date-key such as "2025-03-14".
	DateKeyLayout = "2006-01-02"
	// MonthKeyLayout is the layout of a month-key such as "2025-03".
	MonthKeyLayout = "2006-01"
	// wireTimeLayout matches what browsers emit for Date.prototype.toISOString.
	wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats t as a YYYY-MM-DD date-key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// MonthKey formats t as a YYYY-MM month-key.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD date-key in the local timezone.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return t, nil
}

// ParseMonthKey parses a YYYY-MM month-key in the local timezone.
func ParseMonthKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthKeyLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "month", Reason: fmt.Sprintf("%q is not YYYY-MM", s)}
	}
	return t, nil
}

// ParseWireDate accepts the date encodings seen on the wire and in the local
// cache: a bare date-key, RFC3339 with or without fractional seconds. The
// result is normalized to local midnight.
func ParseWireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateKeyLayout, s, time.Local); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, wireTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t.In(time.Local)), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "startDate", Reason: fmt.Sprintf("unrecognized date %q", s)}
}

// FormatWireDate renders t the way browsers serialize a Date.
func FormatWireDate(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}
