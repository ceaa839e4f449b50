package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventUserCreated         = "user.created"
	EventUserSignedIn        = "user.signed_in"
	EventUserLoggedOut       = "user.logged_out"
	EventUserEmailChanged    = "user.email_changed"
	EventUserPasswordChanged = "user.password_changed"
	EventUserSuspended       = "user.suspended"
	EventUserSoftDeleted     = "user.soft_deleted"
	EventUserRestored        = "user.restored"
)

// UserCreated records a sign-up. The hash is kept out of serialized payloads.
type UserCreated struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e UserCreated) EventID() uuid.UUID     { return e.ID }
func (e UserCreated) EventName() string      { return EventUserCreated }
func (e UserCreated) AggregateID() uuid.UUID { return e.UserID }
func (e UserCreated) OccurredAt() time.Time  { return e.CreatedAt }

type UserSignedIn struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signed_in_at"`
}

func (e UserSignedIn) EventID() uuid.UUID     { return e.ID }
func (e UserSignedIn) EventName() string      { return EventUserSignedIn }
func (e UserSignedIn) AggregateID() uuid.UUID { return e.UserID }
func (e UserSignedIn) OccurredAt() time.Time  { return e.SignedInAt }

type UserLoggedOut struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	LoggedOutAt time.Time `json:"logged_out_at"`
}

func (e UserLoggedOut) EventID() uuid.UUID     { return e.ID }
func (e UserLoggedOut) EventName() string      { return EventUserLoggedOut }
func (e UserLoggedOut) AggregateID() uuid.UUID { return e.UserID }
func (e UserLoggedOut) OccurredAt() time.Time  { return e.LoggedOutAt }

type UserEmailChanged struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Previous  string    `json:"previous"`
	Email     string    `json:"email"`
	ChangedAt time.Time `json:"changed_at"`
}

func (e UserEmailChanged) EventID() uuid.UUID     { return e.ID }
func (e UserEmailChanged) EventName() string      { return EventUserEmailChanged }
func (e UserEmailChanged) AggregateID() uuid.UUID { return e.UserID }
func (e UserEmailChanged) OccurredAt() time.Time  { return e.ChangedAt }

type UserPasswordChanged struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	PasswordHash string    `json:"-"`
	ChangedAt    time.Time `json:"changed_at"`
}

func (e UserPasswordChanged) EventID() uuid.UUID     { return e.ID }
func (e UserPasswordChanged) EventName() string      { return EventUserPasswordChanged }
func (e UserPasswordChanged) AggregateID() uuid.UUID { return e.UserID }
func (e UserPasswordChanged) OccurredAt() time.Time  { return e.ChangedAt }

type UserSuspended struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	SuspendedAt time.Time `json:"suspended_at"`
}

func (e UserSuspended) EventID() uuid.UUID     { return e.ID }
func (e UserSuspended) EventName() string      { return EventUserSuspended }
func (e UserSuspended) AggregateID() uuid.UUID { return e.UserID }
func (e UserSuspended) OccurredAt() time.Time  { return e.SuspendedAt }

type UserSoftDeleted struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (e UserSoftDeleted) EventID() uuid.UUID     { return e.ID }
func (e UserSoftDeleted) EventName() string      { return EventUserSoftDeleted }
func (e UserSoftDeleted) AggregateID() uuid.UUID { return e.UserID }
func (e UserSoftDeleted) OccurredAt() time.Time  { return e.DeletedAt }

type UserRestored struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	RestoredAt time.Time `json:"restored_at"`
}

func (e UserRestored) EventID() uuid.UUID     { return e.ID }
func (e UserRestored) EventName() string      { return EventUserRestored }
func (e UserRestored) AggregateID() uuid.UUID { return e.UserID }
func (e UserRestored) OccurredAt() time.Time  { return e.RestoredAt }
