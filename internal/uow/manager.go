package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/account-security/internal/events"
)

// Manager opens a fresh Work per call.
type Manager struct {
	db  Beginner
	bus events.Bus
}

// NewManager builds a Manager.
func NewManager(db Beginner, bus events.Bus) *Manager {
	return &Manager{db: db, bus: bus}
}

// Do runs fn inside a new unit of work. An error from fn rolls back; success
// commits, publishes the recorded events and then signals end of request.
// fn's context carries w (see FromContext). A *DispatchError result means
// the data is committed.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, w *Work) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w := New(tx, m.bus)

	defer func() {
		if p := recover(); p != nil {
			_ = w.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(WithWork(ctx, w), w); err != nil {
		if rbErr := w.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	commitErr := w.Commit(ctx)
	var dispatchErr *DispatchError
	if commitErr != nil && !errors.As(commitErr, &dispatchErr) {
		return commitErr
	}
	return errors.Join(commitErr, w.End(ctx))
}
