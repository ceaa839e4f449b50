package user

import (
	"context"

	"github.com/spec-kit/account-security/internal/domain"
)

// RuleCodeEmailTaken is the stable code reported when an email is already registered.
const RuleCodeEmailTaken = 5

// EmailChecker answers whether any user currently holds an email.
type EmailChecker interface {
	EmailExists(ctx context.Context, email Email) (bool, error)
}

// EmailUniqueRule is satisfied when no user holds Email.
type EmailUniqueRule struct {
	Checker EmailChecker
	Email   Email
}

func (r EmailUniqueRule) IsSatisfiedBy(ctx context.Context) (bool, error) {
	exists, err := r.Checker.EmailExists(ctx, r.Email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (r EmailUniqueRule) ViolationMessage() (string, int) {
	return "email already registered", RuleCodeEmailTaken
}

// EmailTakenViolation is what storage reports when a unique email constraint
// catches a write that slipped past EmailUniqueRule.
func EmailTakenViolation() *domain.RuleViolation {
	message, code := EmailUniqueRule{}.ViolationMessage()
	return &domain.RuleViolation{Message: message, Code: code}
}
