package repository

import (
	"database/sql"
	"strings"
	"time"
)

const timestampLayout = time.RFC3339Nano

// parseNullableTime parses a stored timestamp. Empty or malformed values,
// as left by rows written before timestamps existed, yield the zero time.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nowUTC returns the current UTC time formatted for storage.
func nowUTC() string {
	return time.Now().UTC().Format(timestampLayout)
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
