package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/daoban/internal/logging"
)

const (
	DefaultDebounce   = time.Second
	DefaultBackoff    = time.Second
	DefaultMaxRetries = 3
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Store.
type Option func(*Store)

// WithDebounce sets the trailing window for coalescing saves.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithBackoff sets the base delay; retry n waits n times this value.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) { s.backoff = d }
}

// WithMaxRetries sets how many times a load is retried after a network
// failure.
func WithMaxRetries(n int) Option {
	return func(s *Store) { s.maxRetries = n }
}

// WithSleep replaces the backoff sleep.
func WithSleep(fn SleepFunc) Option {
	return func(s *Store) { s.sleep = fn }
}

// WithNow sets the clock used for default start dates.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logging.Log) Option {
	return func(s *Store) { s.log = log }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func defaultLogger() logging.Log {
	return zap.NewNop()
}
