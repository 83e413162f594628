package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/signup/internal/events"
)

// MockEventEmitter records emitted events for assertions.
type MockEventEmitter struct {
	// EmitEventFn overrides the default recording behavior when set
	EmitEventFn func(ctx context.Context, event *events.Event) error

	// Err is returned by the default implementation after recording
	Err error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns a copy of the recorded events in emission order.
func (m *MockEventEmitter) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.Event, len(m.events))
	copy(out, m.events)
	return out
}
