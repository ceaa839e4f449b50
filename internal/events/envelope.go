package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// Envelope is the wire shape of an event leaving the process.
type Envelope struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Redactor is implemented by events whose payload carries secrets meant only
// for in-process subscribers.
type Redactor interface {
	Redacted() domain.Event
}

// NewEnvelope serializes the event payload for delivery outside the process,
// using the redacted form when the event has one.
func NewEnvelope(event domain.Event) (Envelope, error) {
	if r, ok := event.(Redactor); ok {
		event = r.Redacted()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	return Envelope{
		ID:          event.EventID(),
		Name:        event.EventName(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
	}, nil
}
