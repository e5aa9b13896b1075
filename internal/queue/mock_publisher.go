package queue

import (
	"context"
	"sync"
)

// MockPublisher implements Publisher by recording events instead of
// delivering them. Safe for concurrent use, since events are published from
// background goroutines.
type MockPublisher struct {
	mu     sync.Mutex
	events []BookingConfirmedEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

// GetPublishedEvents returns a snapshot of everything captured so far.
func (m *MockPublisher) GetPublishedEvents() []BookingConfirmedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]BookingConfirmedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
}
