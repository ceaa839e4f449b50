package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/events"
)

// ErrClosed is returned when a finished unit of work is committed again.
var ErrClosed = errors.New("unit of work already finished")

// ErrRecordedAfterCommit reports events recorded on attached aggregates after
// the transaction committed. Their state was never persisted, so they are
// dropped instead of published.
var ErrRecordedAfterCommit = errors.New("events recorded after commit")

// Tx is the durability boundary. pgx.Tx satisfies it.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens transactions.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// DispatchError means the transaction committed but at least one event could
// not be published.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return "dispatch events: " + e.Err.Error() }

func (e *DispatchError) Unwrap() error { return e.Err }

// Work is the per-request unit of work handed to every repository call.
type Work struct {
	tx        Tx
	bus       events.Bus
	identity  []domain.AggregateRoot
	loaded    map[domain.AggregateRoot]struct{}
	touched   *Collector
	committed bool
	done      bool
}

// New wraps an open transaction.
func New(tx Tx, bus events.Bus) *Work {
	return &Work{
		tx:      tx,
		bus:     bus,
		loaded:  make(map[domain.AggregateRoot]struct{}),
		touched: NewCollector(),
	}
}

// Tx returns the underlying transaction.
func (w *Work) Tx() Tx { return w.tx }

// Attach puts aggregates read during this unit of work into its identity map.
func (w *Work) Attach(aggs ...domain.AggregateRoot) {
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		if _, ok := w.loaded[agg]; ok {
			continue
		}
		w.loaded[agg] = struct{}{}
		w.identity = append(w.identity, agg)
	}
}

// Track registers an aggregate that is about to be created, updated or removed.
func (w *Work) Track(agg domain.AggregateRoot) {
	w.Attach(agg)
	w.touched.Track(agg)
}

// Touched returns the size of the touched set.
func (w *Work) Touched() int { return w.touched.Len() }

// Commit sweeps the identity map into the touched set, commits the
// transaction and, only if that succeeded, publishes the recorded events.
// A failed commit discards the touched set without publishing.
func (w *Work) Commit(ctx context.Context) error {
	if w.done {
		return ErrClosed
	}
	w.done = true
	w.touched.Sweep(w.identity)
	if err := w.tx.Commit(ctx); err != nil {
		w.touched.Discard()
		return fmt.Errorf("commit: %w", err)
	}
	w.committed = true
	if err := w.touched.Drain(ctx, w.bus); err != nil {
		return &DispatchError{Err: err}
	}
	return nil
}

// Rollback aborts the transaction and drops pending events. It is a no-op
// once the unit of work has finished.
func (w *Work) Rollback(ctx context.Context) error {
	if w.done {
		return nil
	}
	w.done = true
	w.touched.Sweep(w.identity)
	w.touched.Discard()
	return w.tx.Rollback(ctx)
}

// End is the end-of-request signal. It clears whatever is still tracked.
// Events recorded after a commit describe state that was never persisted;
// they are dropped and reported as a DispatchError. Calling it again is a
// no-op.
func (w *Work) End(ctx context.Context) error {
	if !w.committed {
		w.touched.Discard()
		return nil
	}
	w.touched.Sweep(w.identity)
	w.identity = nil
	w.loaded = make(map[domain.AggregateRoot]struct{})
	if dropped := w.touched.Discard(); dropped > 0 {
		return &DispatchError{Err: fmt.Errorf("%w: dropped %d", ErrRecordedAfterCommit, dropped)}
	}
	return nil
}
