// Package uow implements the unit of work: a transaction boundary that
// remembers which aggregates it touched and publishes their recorded events
// only after the transaction commits.
package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/events"
)

// Collector is the touched-aggregate set of one unit of work. Membership is by
// identity: aggregates are pointers, so two equal-looking aggregates are two entries.
// It is not safe for concurrent use and must never be shared between requests.
type Collector struct {
	seen  map[domain.AggregateRoot]struct{}
	order []domain.AggregateRoot
}

// NewCollector returns an empty set.
func NewCollector() *Collector {
	return &Collector{seen: make(map[domain.AggregateRoot]struct{})}
}

// Track adds agg once; repeated calls are no-ops.
func (c *Collector) Track(agg domain.AggregateRoot) {
	if agg == nil {
		return
	}
	if _, ok := c.seen[agg]; ok {
		return
	}
	c.seen[agg] = struct{}{}
	c.order = append(c.order, agg)
}

// Sweep tracks every aggregate in aggs that was missed so far.
func (c *Collector) Sweep(aggs []domain.AggregateRoot) {
	for _, agg := range aggs {
		c.Track(agg)
	}
}

// Len returns the number of tracked aggregates.
func (c *Collector) Len() int { return len(c.order) }

// Drain publishes every tracked aggregate's events in record order, aggregates
// in the order they were first tracked. A failed publish does not stop the
// remaining ones; failures are joined. The set is emptied in every case.
func (c *Collector) Drain(ctx context.Context, bus events.Bus) error {
	tracked := c.order
	c.reset()
	if len(tracked) == 0 {
		return nil
	}

	var errs []error
	for _, agg := range tracked {
		for _, event := range agg.PullEvents() {
			if err := bus.Publish(ctx, event); err != nil {
				errs = append(errs, fmt.Errorf("publish %s %s: %w", event.EventName(), event.EventID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Discard forgets the tracked aggregates and drops their pending events. It
// returns how many events were dropped.
func (c *Collector) Discard() int {
	dropped := 0
	for _, agg := range c.order {
		dropped += len(agg.PullEvents())
	}
	c.reset()
	return dropped
}

func (c *Collector) reset() {
	c.seen = make(map[domain.AggregateRoot]struct{})
	c.order = nil
}
