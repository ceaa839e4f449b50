package security

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

const (
	EventCodeGenerated        = "security.code_generated"
	EventCodeRedeemed         = "security.code_redeemed"
	EventChallengeInvalidated = "security.challenge_invalidated"
)

// GeneratedCode pairs a new code with the id it is stored under.
type GeneratedCode struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value,omitempty"`
}

// CodeGenerated records the creation of a challenge and all of its codes.
type CodeGenerated struct {
	ID          uuid.UUID       `json:"id"`
	ChallengeID uuid.UUID       `json:"challenge_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Purpose     Purpose         `json:"purpose"`
	Codes       []GeneratedCode `json:"codes"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

func (e CodeGenerated) EventID() uuid.UUID     { return e.ID }
func (e CodeGenerated) EventName() string      { return EventCodeGenerated }
func (e CodeGenerated) AggregateID() uuid.UUID { return e.ChallengeID }
func (e CodeGenerated) OccurredAt() time.Time  { return e.CreatedAt }

// Redacted returns a copy without code values. Only delivery subscribers in
// the process ever see the codes.
func (e CodeGenerated) Redacted() domain.Event {
	codes := make([]GeneratedCode, len(e.Codes))
	for i, c := range e.Codes {
		codes[i] = GeneratedCode{ID: c.ID}
	}
	e.Codes = codes
	return e
}

// CodeRedeemed records a single code being used.
type CodeRedeemed struct {
	ID          uuid.UUID `json:"id"`
	CodeID      uuid.UUID `json:"code_id"`
	ChallengeID uuid.UUID `json:"challenge_id"`
	UserID      uuid.UUID `json:"user_id"`
	Purpose     Purpose   `json:"purpose"`
	UsedAt      time.Time `json:"used_at"`
}

func (e CodeRedeemed) EventID() uuid.UUID     { return e.ID }
func (e CodeRedeemed) EventName() string      { return EventCodeRedeemed }
func (e CodeRedeemed) AggregateID() uuid.UUID { return e.CodeID }
func (e CodeRedeemed) OccurredAt() time.Time  { return e.UsedAt }

// ChallengeInvalidated records the bulk expiry of a challenge.
type ChallengeInvalidated struct {
	ID            uuid.UUID `json:"id"`
	ChallengeID   uuid.UUID `json:"challenge_id"`
	UserID        uuid.UUID `json:"user_id"`
	Purpose       Purpose   `json:"purpose"`
	InvalidatedAt time.Time `json:"invalidated_at"`
}

func (e ChallengeInvalidated) EventID() uuid.UUID     { return e.ID }
func (e ChallengeInvalidated) EventName() string      { return EventChallengeInvalidated }
func (e ChallengeInvalidated) AggregateID() uuid.UUID { return e.ChallengeID }
func (e ChallengeInvalidated) OccurredAt() time.Time  { return e.InvalidatedAt }
