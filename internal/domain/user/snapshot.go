package user

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the persisted shape of a user.
type Snapshot struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LoggedAt     *time.Time
	SuspendedAt  *time.Time
	DeletedAt    *time.Time
}

// Snapshot copies the user state.
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:           u.id,
		Username:     u.username.String(),
		Email:        u.email.String(),
		PasswordHash: u.password.String(),
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
		LoggedAt:     copyTime(u.loggedAt),
		SuspendedAt:  copyTime(u.suspendedAt),
		DeletedAt:    copyTime(u.deletedAt),
	}
}

// Restore rebuilds a user from storage through the value object constructors.
func Restore(s Snapshot) (*User, error) {
	username, err := ParseUsername(s.Username)
	if err != nil {
		return nil, err
	}
	email, err := ParseEmail(s.Email)
	if err != nil {
		return nil, err
	}
	password, err := HashedPasswordFromHash(s.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &User{
		id:          s.ID,
		username:    username,
		email:       email,
		password:    password,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		loggedAt:    copyTime(s.LoggedAt),
		suspendedAt: copyTime(s.SuspendedAt),
		deletedAt:   copyTime(s.DeletedAt),
	}, nil
}
