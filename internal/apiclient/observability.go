package apiclient

import (
	"time"

	"go.uber.org/zap"
)

// RequestEvent records metadata about a single backend call.
type RequestEvent struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Latency   time.Duration
	Success   bool
	Kind      Kind
}

// Observer receives events about backend calls for logging and metrics.
type Observer interface {
	OnRequestComplete(event RequestEvent)
}

// LogObserver writes request events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("api")}
}

func (o *LogObserver) OnRequestComplete(event RequestEvent) {
	fields := []zap.Field{
		zap.String("method", event.Method),
		zap.String("path", event.Path),
		zap.String("request_id", event.RequestID),
		zap.Duration("latency", event.Latency),
	}
	if event.Status != 0 {
		fields = append(fields, zap.Int("status", event.Status))
	}
	if event.Success {
		o.log.Debug("api call", fields...)
		return
	}
	o.log.Warn("api call failed", append(fields, zap.String("kind", string(event.Kind)))...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnRequestComplete(RequestEvent) {}
