// Package notify publishes workflow run events to interested observers.
// The engine emits one event per state transition; consumers range from
// a no-op (embedded use) to a NATS publisher (service deployments).
package notify

import (
	"context"
	"time"
)

// Event describes a single workflow state transition.
type Event struct {
	RunID string    `json:"run_id"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Cause string    `json:"cause"`
	Time  time.Time `json:"time"`
}

// Publisher delivers transition events. Implementations must be safe
// for use from a single run goroutine; delivery failures are the
// publisher's concern and never abort a run.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards all events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }
