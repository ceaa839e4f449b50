package uow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

type testEvent struct {
	id   uuid.UUID
	name string
	agg  uuid.UUID
}

func (e testEvent) EventID() uuid.UUID     { return e.id }
func (e testEvent) EventName() string      { return e.name }
func (e testEvent) AggregateID() uuid.UUID { return e.agg }
func (e testEvent) OccurredAt() time.Time  { return time.Time{} }

type account struct {
	domain.Recorder
	id uuid.UUID
}

func newAccount() *account { return &account{id: uuid.New()} }

func (a *account) touch(name string) {
	a.Record(testEvent{id: uuid.New(), name: name, agg: a.id})
}

type recordingBus struct {
	mu        sync.Mutex
	published []string
	failOn    map[string]bool
}

func (b *recordingBus) Publish(_ context.Context, event domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn[event.EventName()] {
		return errors.New("broker rejected " + event.EventName())
	}
	b.published = append(b.published, event.EventName())
	return nil
}

type fakeTx struct {
	commitErr  error
	committed  int
	rolledBack int
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack++
	return nil
}

type fakeDB struct {
	txs      []*fakeTx
	beginErr error
	next     func() *fakeTx
}

func (d *fakeDB) Begin(context.Context) (Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	tx := &fakeTx{}
	if d.next != nil {
		tx = d.next()
	}
	d.txs = append(d.txs, tx)
	return tx, nil
}
