package domain

import "fmt"

// ValidationError reports a malformed field in a document or user input.
// Numeric fields are repaired instead of producing a ValidationError; it is
// reserved for values the document cannot do without.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
