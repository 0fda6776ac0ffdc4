package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kopong25/freightquick/core/notify"
)

// MockNotifier is a simple publisher used in tests.
type MockNotifier struct {
	mu      sync.Mutex
	Notices map[string][]notify.Notice
	FailIDs map[string]bool
	closed  bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Notices: make(map[string][]notify.Notice),
		FailIDs: make(map[string]bool),
	}
}

// NotifyAssignment records the notice or returns an error if the driver is
// configured to fail.
func (m *MockNotifier) NotifyAssignment(_ context.Context, n notify.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[n.DriverID] {
		return fmt.Errorf("publish failed")
	}
	m.Notices[n.DriverID] = append(m.Notices[n.DriverID], n)
	return nil
}

// Sent returns the notices recorded for the driver.
func (m *MockNotifier) Sent(driverID string) []notify.Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Notice, len(m.Notices[driverID]))
	copy(out, m.Notices[driverID])
	return out
}

// Close marks the notifier closed.
func (m *MockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockNotifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
