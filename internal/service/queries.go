package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
)

// Query is a read-only request.
type Query interface {
	QueryName() string
}

type FindUser struct {
	UserID uuid.UUID
}

// FindChallenges lists every challenge of a user, newest first.
type FindChallenges struct {
	UserID uuid.UUID
}

// FindUserIDByEmail resolves an email to a user id. An unknown email is
// reported as invalid credentials so callers cannot probe for accounts.
type FindUserIDByEmail struct {
	Email string
}

func (FindUser) QueryName() string          { return "user.find" }
func (FindChallenges) QueryName() string    { return "security.find_challenges" }
func (FindUserIDByEmail) QueryName() string { return "user.find_id_by_email" }

// UserView is the read model of a user.
type UserView struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LoggedAt    *time.Time `json:"logged_at,omitempty"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ChallengeView is the read model of a challenge and its codes.
type ChallengeView struct {
	ID            uuid.UUID  `json:"id"`
	Purpose       string     `json:"purpose"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	InvalidatedAt *time.Time `json:"invalidated_at,omitempty"`
	Codes         []CodeView `json:"codes"`
}

type CodeView struct {
	ID     uuid.UUID  `json:"id"`
	Code   string     `json:"code"`
	Status string     `json:"status"`
	UsedAt *time.Time `json:"used_at,omitempty"`
}

func newUserView(u *user.User) UserView {
	return UserView{
		ID:          u.ID(),
		Username:    u.Username().String(),
		Email:       u.Email().String(),
		State:       string(u.State()),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
		LoggedAt:    u.LoggedAt(),
		SuspendedAt: u.SuspendedAt(),
		DeletedAt:   u.DeletedAt(),
	}
}

func newChallengeView(c *security.Challenge) ChallengeView {
	view := ChallengeView{
		ID:            c.ID(),
		Purpose:       c.Purpose().String(),
		CreatedAt:     c.CreatedAt(),
		ExpiresAt:     c.ExpiresAt(),
		InvalidatedAt: c.InvalidatedAt(),
	}
	for _, sc := range c.Codes() {
		view.Codes = append(view.Codes, CodeView{
			ID:     sc.ID(),
			Code:   sc.Code().String(),
			Status: sc.Status().String(),
			UsedAt: sc.UsedAt(),
		})
	}
	return view
}
