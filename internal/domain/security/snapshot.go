package security

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// ChallengeSnapshot is the persisted shape of a challenge and its codes.
// Repositories read and write snapshots; they never touch aggregate fields.
type ChallengeSnapshot struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Purpose       Purpose
	CreatedAt     time.Time
	ExpiresAt     time.Time
	InvalidatedAt *time.Time
	Codes         []CodeSnapshot
}

// CodeSnapshot is the persisted shape of one code.
type CodeSnapshot struct {
	ID     uuid.UUID
	Code   string
	Status Status
	UsedAt *time.Time
}

// Snapshot copies the challenge state.
func (c *Challenge) Snapshot() ChallengeSnapshot {
	snap := ChallengeSnapshot{
		ID:            c.id,
		UserID:        c.userID,
		Purpose:       c.purpose,
		CreatedAt:     c.createdAt,
		ExpiresAt:     c.expiresAt,
		InvalidatedAt: copyTime(c.invalidatedAt),
		Codes:         make([]CodeSnapshot, 0, len(c.codes)),
	}
	for _, sc := range c.codes {
		snap.Codes = append(snap.Codes, sc.Snapshot())
	}
	return snap
}

// Snapshot copies the code state.
func (sc *SecurityCode) Snapshot() CodeSnapshot {
	return CodeSnapshot{
		ID:     sc.id,
		Code:   sc.code.String(),
		Status: sc.status,
		UsedAt: copyTime(sc.usedAt),
	}
}

// RestoreChallenge rebuilds a challenge from storage, validating every value.
func RestoreChallenge(snap ChallengeSnapshot) (*Challenge, error) {
	if !snap.Purpose.Valid() {
		_, err := ParsePurpose(string(snap.Purpose))
		return nil, err
	}
	c := &Challenge{
		id:            snap.ID,
		userID:        snap.UserID,
		purpose:       snap.Purpose,
		createdAt:     snap.CreatedAt,
		expiresAt:     snap.ExpiresAt,
		invalidatedAt: copyTime(snap.InvalidatedAt),
		codes:         make([]*SecurityCode, 0, len(snap.Codes)),
	}
	for _, cs := range snap.Codes {
		code, err := ParseCode(cs.Code)
		if err != nil {
			return nil, err
		}
		status, err := ParseStatus(string(cs.Status))
		if err != nil {
			return nil, err
		}
		if (status == StatusUsed) != (cs.UsedAt != nil) {
			return nil, domain.NewFormatError("used_at", "must be set exactly when the code is used")
		}
		c.codes = append(c.codes, &SecurityCode{
			id:        cs.ID,
			challenge: c,
			code:      code,
			status:    status,
			usedAt:    copyTime(cs.UsedAt),
		})
	}
	return c, nil
}
