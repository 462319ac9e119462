package changefeed

import (
	"context"
	"log/slog"
	"sync"
)

// Memory is an in-process Feed for single-instance deployments and tests.
type Memory struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

var _ Feed = (*Memory)(nil)

// NewMemory creates an empty in-process feed.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]chan Event)}
}

// Publish delivers e to every subscriber without blocking.
func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		select {
		case ch <- e:
		default:
			slog.Warn("changefeed_dropped", "subscriber", id, "kind", e.Kind)
		}
	}
	return nil
}

// Subscribe registers a new subscriber.
func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
