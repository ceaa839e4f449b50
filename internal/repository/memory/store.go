// Package memory keeps users and challenges in process. It backs local runs
// without a database and the service tests.
package memory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/uow"
)

// ErrNotMemory is returned when a memory repository is handed a unit of work
// opened by some other store.
var ErrNotMemory = errors.New("unit of work is not backed by the memory store")

type data struct {
	users      map[uuid.UUID]user.Snapshot
	challenges map[uuid.UUID]security.ChallengeSnapshot
}

func (d data) clone() data {
	out := data{
		users:      make(map[uuid.UUID]user.Snapshot, len(d.users)),
		challenges: make(map[uuid.UUID]security.ChallengeSnapshot, len(d.challenges)),
	}
	for id, u := range d.users {
		out.users[id] = u
	}
	for id, c := range d.challenges {
		codes := make([]security.CodeSnapshot, len(c.Codes))
		copy(codes, c.Codes)
		c.Codes = codes
		out.challenges[id] = c
	}
	return out
}

// Store is a serializable in-memory database: one transaction at a time, each
// working on a private copy that replaces the committed state on Commit.
type Store struct {
	sem       chan struct{}
	committed data
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sem: make(chan struct{}, 1),
		committed: data{
			users:      make(map[uuid.UUID]user.Snapshot),
			challenges: make(map[uuid.UUID]security.ChallengeSnapshot),
		},
	}
}

// Begin waits for the running transaction to finish, then opens a new one.
func (s *Store) Begin(ctx context.Context) (uow.Tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Tx{store: s, staged: s.committed.clone()}, nil
}

// Tx is one memory transaction.
type Tx struct {
	store  *Store
	staged data
	done   bool
}

// Commit publishes the staged state.
func (t *Tx) Commit(context.Context) error {
	if t.done {
		return uow.ErrClosed
	}
	t.done = true
	t.store.committed = t.staged
	<-t.store.sem
	return nil
}

// Rollback drops the staged state.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	<-t.store.sem
	return nil
}

func txFrom(w *uow.Work) (*Tx, error) {
	tx, ok := w.Tx().(*Tx)
	if !ok {
		return nil, ErrNotMemory
	}
	if tx.done {
		return nil, uow.ErrClosed
	}
	return tx, nil
}
