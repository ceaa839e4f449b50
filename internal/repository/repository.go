package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/uow"
)

// UserRepository defines persistence access for users. Every call runs inside
// the caller's unit of work; reads attach aggregates to it and writes track them.
type UserRepository interface {
	Get(ctx context.Context, w *uow.Work, id uuid.UUID) (*user.User, error)
	Store(ctx context.Context, w *uow.Work, u *user.User) error
	FindIDByEmail(ctx context.Context, w *uow.Work, email user.Email) (uuid.UUID, error)
	EmailExists(ctx context.Context, w *uow.Work, email user.Email) (bool, error)
	// Lock holds the user's row until the unit of work ends so that
	// check-then-act sequences for one user serialize.
	Lock(ctx context.Context, w *uow.Work, id uuid.UUID) error
}

// SecurityRepository defines persistence access for challenges and their codes.
type SecurityRepository interface {
	Get(ctx context.Context, w *uow.Work, id uuid.UUID) (*security.Challenge, error)
	Store(ctx context.Context, w *uow.Work, c *security.Challenge) error
	StoreCode(ctx context.Context, w *uow.Work, sc *security.SecurityCode) error
	FindNonInvalidated(ctx context.Context, w *uow.Work, userID uuid.UUID, purpose security.Purpose) (*security.Challenge, error)
	// FindCodeByValue prefers an unused code of a challenge issued for
	// purpose, then any code with that value, newest challenge first.
	FindCodeByValue(ctx context.Context, w *uow.Work, userID uuid.UUID, code security.Code, purpose security.Purpose) (*security.SecurityCode, error)
	CountActiveChallenges(ctx context.Context, w *uow.Work, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, w *uow.Work, userID uuid.UUID) ([]*security.Challenge, error)
}

// EmailChecker narrows a UserRepository to the capability EmailUniqueRule needs.
func EmailChecker(repo UserRepository, w *uow.Work) user.EmailChecker {
	return emailChecker{repo: repo, w: w}
}

type emailChecker struct {
	repo UserRepository
	w    *uow.Work
}

func (c emailChecker) EmailExists(ctx context.Context, email user.Email) (bool, error) {
	return c.repo.EmailExists(ctx, c.w, email)
}

// ChallengeCounter narrows a SecurityRepository to the capability QuotaRule needs.
func ChallengeCounter(repo SecurityRepository, w *uow.Work) security.ChallengeCounter {
	return challengeCounter{repo: repo, w: w}
}

type challengeCounter struct {
	repo SecurityRepository
	w    *uow.Work
}

func (c challengeCounter) CountActiveChallenges(ctx context.Context, userID uuid.UUID) (int, error) {
	return c.repo.CountActiveChallenges(ctx, c.w, userID)
}
