package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// State is derived from the nullable status timestamps.
type State string

const (
	StateActive    State = "active"
	StateSuspended State = "suspended"
	StateDeleted   State = "deleted"
)

// User is the account aggregate.
type User struct {
	domain.Recorder

	id          uuid.UUID
	username    Username
	email       Email
	password    HashedPassword
	createdAt   time.Time
	updatedAt   time.Time
	loggedAt    *time.Time
	suspendedAt *time.Time
	deletedAt   *time.Time
}

func (u *User) ID() uuid.UUID            { return u.id }
func (u *User) Username() Username       { return u.username }
func (u *User) Email() Email             { return u.email }
func (u *User) Password() HashedPassword { return u.password }
func (u *User) CreatedAt() time.Time     { return u.createdAt }
func (u *User) UpdatedAt() time.Time     { return u.updatedAt }
func (u *User) LoggedAt() *time.Time     { return copyTime(u.loggedAt) }
func (u *User) SuspendedAt() *time.Time  { return copyTime(u.suspendedAt) }
func (u *User) DeletedAt() *time.Time    { return copyTime(u.deletedAt) }
func (u *User) IsSuspended() bool        { return u.suspendedAt != nil }
func (u *User) IsDeleted() bool          { return u.deletedAt != nil }

// State reports deleted ahead of suspended when both flags are somehow set.
func (u *User) State() State {
	switch {
	case u.deletedAt != nil:
		return StateDeleted
	case u.suspendedAt != nil:
		return StateSuspended
	default:
		return StateActive
	}
}

func (u *User) applyUserCreated(e UserCreated) {
	u.id = e.UserID
	u.username = Username{value: e.Username}
	u.email = Email{value: e.Email}
	u.password = HashedPassword{hash: e.PasswordHash}
	u.createdAt = e.CreatedAt
	u.updatedAt = e.CreatedAt
}

func (u *User) applyUserSignedIn(e UserSignedIn) {
	at := e.SignedInAt
	u.loggedAt = &at
	u.updatedAt = at
}

func (u *User) applyUserLoggedOut(UserLoggedOut) {}

func (u *User) applyUserEmailChanged(e UserEmailChanged) {
	u.email = Email{value: e.Email}
	u.updatedAt = e.ChangedAt
}

func (u *User) applyUserPasswordChanged(e UserPasswordChanged) {
	u.password = HashedPassword{hash: e.PasswordHash}
	u.updatedAt = e.ChangedAt
}

func (u *User) applyUserSuspended(e UserSuspended) {
	at := e.SuspendedAt
	u.suspendedAt = &at
	u.updatedAt = at
}

func (u *User) applyUserSoftDeleted(e UserSoftDeleted) {
	at := e.DeletedAt
	u.deletedAt = &at
	u.updatedAt = at
}

func (u *User) applyUserRestored(e UserRestored) {
	u.suspendedAt = nil
	u.deletedAt = nil
	u.updatedAt = e.RestoredAt
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
