// Package notify pushes farm events to chat platforms (Slack, Discord).
package notify

import (
	"context"
	"sync"
)

// Event kinds.
const (
	KindTaskCompleted = "task_completed"
	KindAssetMoved    = "asset_moved"
	KindCycleStarted  = "cycle_started"
	KindOverdueDigest = "overdue_digest"
)

// Event is a farm happening worth announcing.
type Event struct {
	Kind     string
	Title    string
	Body     string
	Severity string  // "info", "warning", "error", "success"; empty means kind default
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed alongside an event.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Notifier delivers events to a chat platform.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// Fanout delivers each event to every wrapped notifier. Failures are
// collected; the first error is returned after all sends were tried.
type Fanout struct {
	Notifiers []Notifier
}

func (f *Fanout) Send(ctx context.Context, event Event) error {
	var firstErr error
	for _, n := range f.Notifiers {
		if err := n.Send(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Mock records sent events for tests.
type Mock struct {
	mu     sync.Mutex
	Events []Event
	Err    error // returned from Send when set
}

func (m *Mock) Send(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

// Sent returns a copy of the recorded events.
func (m *Mock) Sent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.Events))
	copy(out, m.Events)
	return out
}
