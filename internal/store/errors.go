package store

import "errors"

var (
	// ErrNotAuthenticated indicates a user-data call was made without an
	// active session. No network call is issued.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStaleResponse indicates a load finished after a newer load was
	// issued, or after the session changed, and was discarded.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store closed")
)
