package events

import (
	"context"
	"log/slog"
	"sync"
)

// NoopPublisher logs events when no broker is configured and keeps them for tests.
type NoopPublisher struct {
	mu        sync.Mutex
	published []BookingEvent
}

var _ Publisher = (*NoopPublisher)(nil)

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish records e.
func (p *NoopPublisher) Publish(_ context.Context, e BookingEvent) error {
	p.mu.Lock()
	p.published = append(p.published, e)
	p.mu.Unlock()
	slog.Debug("noop_event_publish", "type", e.Type, "booking_id", e.BookingID)
	return nil
}

// Published returns a copy of every recorded event.
func (p *NoopPublisher) Published() []BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]BookingEvent, len(p.published))
	copy(out, p.published)
	return out
}
