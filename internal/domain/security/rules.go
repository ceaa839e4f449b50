package security

import (
	"context"

	"github.com/google/uuid"
)

const (
	// DefaultChallengeQuota is the number of non-invalidated challenges a user may hold.
	DefaultChallengeQuota = 5
	// RuleCodeChallengeQuota is the stable code reported when the quota is exhausted.
	RuleCodeChallengeQuota = 4
)

// ChallengeCounter counts a user's non-invalidated challenges.
type ChallengeCounter interface {
	CountActiveChallenges(ctx context.Context, userID uuid.UUID) (int, error)
}

// QuotaRule is satisfied while the user holds fewer than Limit active challenges.
type QuotaRule struct {
	Counter ChallengeCounter
	UserID  uuid.UUID
	Limit   int
}

func (r QuotaRule) IsSatisfiedBy(ctx context.Context) (bool, error) {
	active, err := r.Counter.CountActiveChallenges(ctx, r.UserID)
	if err != nil {
		return false, err
	}
	return active < r.Limit, nil
}

func (r QuotaRule) ViolationMessage() (string, int) {
	return "invalidate existing codes before generating new ones", RuleCodeChallengeQuota
}
