package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact recorded by an aggregate.
type Event interface {
	EventID() uuid.UUID
	EventName() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// AggregateRoot is anything that records events for deferred publication.
type AggregateRoot interface {
	PullEvents() []Event
	PendingEvents() int
}

// Recorder keeps the events an aggregate recorded during the current unit of work.
// Embed it in aggregate types.
type Recorder struct {
	events []Event
}

// Record appends an event.
func (r *Recorder) Record(event Event) {
	r.events = append(r.events, event)
}

// PullEvents returns recorded events in record order and forgets them.
func (r *Recorder) PullEvents() []Event {
	events := r.events
	r.events = nil
	return events
}

// PendingEvents returns how many events are waiting to be pulled.
func (r *Recorder) PendingEvents() int {
	return len(r.events)
}
