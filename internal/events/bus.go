// Package events provides an in-process publish/subscribe registry. The
// application context owns one Bus per topic; there is no global instance.
package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// TopicAPIError carries classified backend failures to the notification
// surface.
const TopicAPIError = "api-error"

// Log is the logging surface the bus needs.
type Log interface {
	Error(string, ...zap.Field)
}

// Handler receives published payloads.
type Handler[T any] func(T)

// Bus fans a payload out synchronously to every current subscriber.
// Delivery is fire-and-forget: a panicking handler is logged and skipped.
type Bus[T any] struct {
	topic string
	log   Log

	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler[T]
	order    []uint64
}

// NewBus creates a bus for topic. log may be nil.
func NewBus[T any](topic string, log Log) *Bus[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus[T]{
		topic:    topic,
		log:      log,
		handlers: make(map[uint64]Handler[T]),
	}
}

// Topic returns the bus topic name.
func (b *Bus[T]) Topic() string {
	return b.topic
}

// Subscribe registers h and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers payload to the subscribers registered at the time of the
// call, in subscription order. Handlers run outside the bus lock, so they
// may subscribe, unsubscribe or publish.
func (b *Bus[T]) Publish(payload T) {
	b.mu.RLock()
	snapshot := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		snapshot = append(snapshot, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		b.deliver(h, payload)
	}
}

func (b *Bus[T]) deliver(h Handler[T], payload T) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", b.topic),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	h(payload)
}

// Len returns the number of current subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
