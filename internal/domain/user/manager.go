package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// Manager applies account events to users after checking their preconditions.
type Manager struct {
	clock domain.Clock
}

// NewManager builds a Manager.
func NewManager(clock domain.Clock) *Manager {
	return &Manager{clock: clock}
}

// SignUp creates a user once the email is known to be free.
func (m *Manager) SignUp(ctx context.Context, id uuid.UUID, username Username, credentials Credentials, checker EmailChecker) (*User, error) {
	if err := domain.CheckRule(ctx, EmailUniqueRule{Checker: checker, Email: credentials.Email}); err != nil {
		return nil, err
	}
	event := UserCreated{
		ID:           uuid.New(),
		UserID:       id,
		Username:     username.String(),
		Email:        credentials.Email.String(),
		PasswordHash: credentials.Password.String(),
		CreatedAt:    m.clock.Now(),
	}
	u := &User{}
	u.applyUserCreated(event)
	u.Record(event)
	return u, nil
}

// SignIn verifies the password and stamps the login time.
func (m *Manager) SignIn(u *User, plainPassword string) error {
	if !u.password.Match(plainPassword) {
		return ErrInvalidCredentials
	}
	event := UserSignedIn{
		ID:         uuid.New(),
		UserID:     u.id,
		Email:      u.email.String(),
		SignedInAt: m.clock.Now(),
	}
	u.applyUserSignedIn(event)
	u.Record(event)
	return nil
}

// Logout always succeeds.
func (m *Manager) Logout(u *User) {
	event := UserLoggedOut{ID: uuid.New(), UserID: u.id, LoggedOutAt: m.clock.Now()}
	u.applyUserLoggedOut(event)
	u.Record(event)
}

// ChangeEmail requires a different address that no other user holds.
func (m *Manager) ChangeEmail(ctx context.Context, u *User, email Email, checker EmailChecker) error {
	if u.email.Equal(email) {
		return ErrEmailUnchanged
	}
	if err := domain.CheckRule(ctx, EmailUniqueRule{Checker: checker, Email: email}); err != nil {
		return err
	}
	event := UserEmailChanged{
		ID:        uuid.New(),
		UserID:    u.id,
		Previous:  u.email.String(),
		Email:     email.String(),
		ChangedAt: m.clock.Now(),
	}
	u.applyUserEmailChanged(event)
	u.Record(event)
	return nil
}

// ChangePassword replaces the stored hash.
func (m *Manager) ChangePassword(u *User, password HashedPassword) {
	event := UserPasswordChanged{
		ID:           uuid.New(),
		UserID:       u.id,
		PasswordHash: password.String(),
		ChangedAt:    m.clock.Now(),
	}
	u.applyUserPasswordChanged(event)
	u.Record(event)
}
