package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-security/internal/domain"
)

func TestManagerDoDefersEventsUntilCommit(t *testing.T) {
	db := &fakeDB{}
	bus := &recordingBus{}
	m := NewManager(db, bus)
	first, second := newAccount(), newAccount()

	err := m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		first.touch("first.created")
		w.Track(first)
		second.touch("second.created")
		w.Track(second)
		first.touch("first.renamed")
		w.Track(first)

		assert.Empty(t, bus.published, "nothing leaves before commit")
		got, ok := FromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, w, got)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first.created", "first.renamed", "second.created"}, bus.published)

	err = m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		w.Track(first)
		w.Track(second)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, bus.published, 3, "a commit without new mutations publishes nothing")
	require.Len(t, db.txs, 2)
	assert.Equal(t, 1, db.txs[1].committed)
}

func TestManagerDoRollsBackOnError(t *testing.T) {
	db := &fakeDB{}
	bus := &recordingBus{}
	m := NewManager(db, bus)
	boom := errors.New("rule violated")
	a := newAccount()

	err := m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		a.touch("created")
		w.Track(a)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	require.Len(t, db.txs, 1)
	assert.Equal(t, 1, db.txs[0].rolledBack)
	assert.Zero(t, db.txs[0].committed)
	assert.Empty(t, bus.published)
	assert.Zero(t, a.PendingEvents())
}

func TestManagerDoRollsBackOnPanic(t *testing.T) {
	db := &fakeDB{}
	m := NewManager(db, &recordingBus{})

	assert.PanicsWithValue(t, "boom", func() {
		_ = m.Do(context.Background(), func(context.Context, *Work) error {
			panic("boom")
		})
	})
	require.Len(t, db.txs, 1)
	assert.Equal(t, 1, db.txs[0].rolledBack)
}

func TestManagerDoBeginFailure(t *testing.T) {
	m := NewManager(&fakeDB{beginErr: errors.New("pool closed")}, &recordingBus{})
	called := false

	err := m.Do(context.Background(), func(context.Context, *Work) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestManagerDoCommitFailure(t *testing.T) {
	db := &fakeDB{next: func() *fakeTx { return &fakeTx{commitErr: errors.New("deadlock detected")} }}
	bus := &recordingBus{}
	m := NewManager(db, bus)

	err := m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		a := newAccount()
		a.touch("created")
		w.Track(a)
		return nil
	})

	require.Error(t, err)
	var dispatchErr *DispatchError
	assert.False(t, errors.As(err, &dispatchErr))
	assert.Empty(t, bus.published)
}

func TestManagerDoDispatchFailureMeansCommitted(t *testing.T) {
	db := &fakeDB{}
	bus := &recordingBus{failOn: map[string]bool{"created": true}}
	m := NewManager(db, bus)

	err := m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		a := newAccount()
		a.touch("created")
		w.Track(a)
		return nil
	})

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, 1, db.txs[0].committed)
}

// mutatingBus records a follow-up event on the aggregate it was handed while
// the commit is publishing.
type mutatingBus struct {
	recordingBus
	target *account
}

func (b *mutatingBus) Publish(ctx context.Context, event domain.Event) error {
	if event.EventName() == "created" {
		b.target.touch("subscriber.side_effect")
	}
	return b.recordingBus.Publish(ctx, event)
}

func TestManagerDoNeverPublishesUncommittedState(t *testing.T) {
	a := newAccount()
	bus := &mutatingBus{target: a}
	m := NewManager(&fakeDB{}, bus)

	err := m.Do(context.Background(), func(ctx context.Context, w *Work) error {
		a.touch("created")
		w.Track(a)
		return nil
	})

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.ErrorIs(t, err, ErrRecordedAfterCommit)
	assert.Equal(t, []string{"created"}, bus.published)
	assert.Zero(t, a.PendingEvents())
}
