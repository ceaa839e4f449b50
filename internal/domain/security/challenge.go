package security

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// CodesPerChallenge is how many codes one Generate call issues.
const CodesPerChallenge = 5

// Challenge is one batch of codes issued for one user and one purpose.
// It owns its codes; they are created with it and never move to another challenge.
type Challenge struct {
	domain.Recorder

	id            uuid.UUID
	userID        uuid.UUID
	purpose       Purpose
	createdAt     time.Time
	expiresAt     time.Time
	invalidatedAt *time.Time
	codes         []*SecurityCode
}

func (c *Challenge) ID() uuid.UUID                { return c.id }
func (c *Challenge) UserID() uuid.UUID            { return c.userID }
func (c *Challenge) Purpose() Purpose             { return c.purpose }
func (c *Challenge) CreatedAt() time.Time         { return c.createdAt }
func (c *Challenge) ExpiresAt() time.Time         { return c.expiresAt }
func (c *Challenge) IsInvalidated() bool          { return c.invalidatedAt != nil }
func (c *Challenge) IsExpired(now time.Time) bool { return !now.Before(c.expiresAt) }

// InvalidatedAt returns nil while the challenge is active.
func (c *Challenge) InvalidatedAt() *time.Time { return copyTime(c.invalidatedAt) }

// Codes returns the owned codes in issue order.
func (c *Challenge) Codes() []*SecurityCode {
	out := make([]*SecurityCode, len(c.codes))
	copy(out, c.codes)
	return out
}

// Code finds an owned code by value, preferring an unused one.
func (c *Challenge) Code(value Code) (*SecurityCode, bool) {
	var found *SecurityCode
	for _, sc := range c.codes {
		if !sc.code.Equal(value) {
			continue
		}
		if !sc.IsUsed() {
			return sc, true
		}
		if found == nil {
			found = sc
		}
	}
	return found, found != nil
}

func (c *Challenge) applyCodeGenerated(e CodeGenerated) {
	c.id = e.ChallengeID
	c.userID = e.UserID
	c.purpose = e.Purpose
	c.createdAt = e.CreatedAt
	c.expiresAt = e.ExpiresAt
	c.invalidatedAt = nil
	c.codes = make([]*SecurityCode, 0, len(e.Codes))
	for _, generated := range e.Codes {
		c.codes = append(c.codes, &SecurityCode{
			id:        generated.ID,
			challenge: c,
			code:      Code{value: generated.Value},
			status:    StatusUnused,
		})
	}
}

// Codes redeemed before invalidation keep their original usedAt.
func (c *Challenge) applyChallengeInvalidated(e ChallengeInvalidated) {
	at := e.InvalidatedAt
	c.invalidatedAt = &at
	for _, sc := range c.codes {
		if sc.IsUsed() {
			continue
		}
		usedAt := at
		sc.status = StatusUsed
		sc.usedAt = &usedAt
	}
}

// SecurityCode is one single-use code. It records its own events when redeemed directly.
type SecurityCode struct {
	domain.Recorder

	id        uuid.UUID
	challenge *Challenge
	code      Code
	status    Status
	usedAt    *time.Time
}

func (sc *SecurityCode) ID() uuid.UUID         { return sc.id }
func (sc *SecurityCode) Challenge() *Challenge { return sc.challenge }
func (sc *SecurityCode) Code() Code            { return sc.code }
func (sc *SecurityCode) Status() Status        { return sc.status }
func (sc *SecurityCode) IsUsed() bool          { return sc.status == StatusUsed }
func (sc *SecurityCode) UsedAt() *time.Time    { return copyTime(sc.usedAt) }

func (sc *SecurityCode) applyCodeRedeemed(e CodeRedeemed) {
	at := e.UsedAt
	sc.status = StatusUsed
	sc.usedAt = &at
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
