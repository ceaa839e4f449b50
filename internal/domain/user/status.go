package user

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// Operation is a requested status transition.
type Operation string

const (
	OperationSuspend    Operation = "suspend"
	OperationSoftDelete Operation = "soft_delete"
	OperationRestore    Operation = "restore"
)

// ParseOperation rejects anything but the three known operations.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(raw)))
	switch op {
	case OperationSuspend, OperationSoftDelete, OperationRestore:
		return op, nil
	}
	return "", ErrUnknownOperation
}

// StatusManager handles suspend, soft-delete and restore.
type StatusManager struct {
	clock    domain.Clock
	handlers map[Operation]func(*User) error
}

// NewStatusManager builds a StatusManager.
func NewStatusManager(clock domain.Clock) *StatusManager {
	m := &StatusManager{clock: clock}
	m.handlers = map[Operation]func(*User) error{
		OperationSuspend:    m.Suspend,
		OperationSoftDelete: m.SoftDelete,
		OperationRestore:    m.Restore,
	}
	return m
}

// ChangeStatus dispatches op to its transition.
func (m *StatusManager) ChangeStatus(u *User, op Operation) error {
	handler, ok := m.handlers[op]
	if !ok {
		return ErrUnknownOperation
	}
	return handler(u)
}

func (m *StatusManager) Suspend(u *User) error {
	if u.IsSuspended() {
		return ErrAlreadySuspended
	}
	event := UserSuspended{ID: uuid.New(), UserID: u.id, SuspendedAt: m.clock.Now()}
	u.applyUserSuspended(event)
	u.Record(event)
	return nil
}

func (m *StatusManager) SoftDelete(u *User) error {
	if u.IsDeleted() {
		return ErrAlreadySoftDeleted
	}
	event := UserSoftDeleted{ID: uuid.New(), UserID: u.id, DeletedAt: m.clock.Now()}
	u.applyUserSoftDeleted(event)
	u.Record(event)
	return nil
}

// Restore clears both the suspension and the deletion.
func (m *StatusManager) Restore(u *User) error {
	if !u.IsSuspended() && !u.IsDeleted() {
		return ErrCannotRestore
	}
	event := UserRestored{ID: uuid.New(), UserID: u.id, RestoredAt: m.clock.Now()}
	u.applyUserRestored(event)
	u.Record(event)
	return nil
}
