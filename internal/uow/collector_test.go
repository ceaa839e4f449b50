package uow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorTracksByIdentity(t *testing.T) {
	c := NewCollector()
	a := newAccount()
	twin := &account{id: a.id}

	c.Track(a)
	c.Track(a)
	c.Track(twin)
	c.Track(nil)

	assert.Equal(t, 2, c.Len())
}

func TestCollectorDrainPublishesInOrder(t *testing.T) {
	c := NewCollector()
	bus := &recordingBus{}
	first, second := newAccount(), newAccount()

	second.touch("second.created")
	first.touch("first.created")
	first.touch("first.updated")
	c.Track(first)
	c.Track(second)

	require.NoError(t, c.Drain(context.Background(), bus))

	assert.Equal(t, []string{"first.created", "first.updated", "second.created"}, bus.published)
	assert.Zero(t, c.Len())
	assert.Zero(t, first.PendingEvents())

	require.NoError(t, c.Drain(context.Background(), bus))
	assert.Len(t, bus.published, 3)
}

func TestCollectorDrainContinuesAfterFailure(t *testing.T) {
	c := NewCollector()
	bus := &recordingBus{failOn: map[string]bool{"a.two": true}}
	a := newAccount()
	a.touch("a.one")
	a.touch("a.two")
	a.touch("a.three")
	c.Track(a)

	err := c.Drain(context.Background(), bus)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.two")
	assert.Equal(t, []string{"a.one", "a.three"}, bus.published)
	assert.Zero(t, c.Len(), "the set is cleared even when publishing fails")
}

func TestCollectorDiscardDropsEvents(t *testing.T) {
	c := NewCollector()
	a := newAccount()
	a.touch("a.created")
	a.touch("a.renamed")
	c.Track(a)

	assert.Equal(t, 2, c.Discard())

	assert.Zero(t, c.Len())
	assert.Zero(t, a.PendingEvents())
}

func TestCollectorSweepAddsMissed(t *testing.T) {
	c := NewCollector()
	tracked, missed := newAccount(), newAccount()
	c.Track(tracked)

	c.Sweep(nil)
	c.Sweep(nil)
	assert.Equal(t, 1, c.Len())

	c.Sweep(toRoots(tracked, missed))
	assert.Equal(t, 2, c.Len())
}
