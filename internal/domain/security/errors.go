package security

import (
	"fmt"
	"time"

	"github.com/spec-kit/account-security/internal/domain"
)

var (
	ErrCodeNotFound      = &domain.NotFoundError{Resource: "security code"}
	ErrChallengeNotFound = &domain.NotFoundError{Resource: "security challenge"}
	ErrNoActiveChallenge = &domain.NotFoundError{Resource: "active security challenge"}
	ErrChallengeExpired  = &domain.ConflictError{Reason: "security challenge expired"}
)

// PurposeMismatchError is returned when a code is redeemed for a purpose other
// than the one its challenge was issued for.
type PurposeMismatchError struct {
	Challenge Purpose
	Requested Purpose
}

func (e *PurposeMismatchError) Error() string {
	return fmt.Sprintf("code was issued for %s, not %s", e.Challenge, e.Requested)
}

func (e *PurposeMismatchError) Is(target error) bool { return target == domain.ErrConflict }

// AlreadyUsedError carries the moment the code was first used.
type AlreadyUsedError struct {
	UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
	return "security code already used at " + e.UsedAt.Format(time.RFC3339)
}

func (e *AlreadyUsedError) Is(target error) bool { return target == domain.ErrConflict }
