package security

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/domain"
)

// CodeSource produces random code strings from an alphabet.
type CodeSource interface {
	Generate(quantity, length int, alphabet string, allowDuplicates bool) ([]string, error)
}

// Manager orchestrates rule checks, event construction and application for
// challenges and codes. It is the only caller of the aggregates' apply methods.
type Manager struct {
	clock           domain.Clock
	source          CodeSource
	quota           int
	allowDuplicates bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithQuota overrides the number of active challenges a user may hold.
func WithQuota(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.quota = limit
		}
	}
}

// WithUniqueCharacters forbids repeated characters inside a single code.
func WithUniqueCharacters(unique bool) Option {
	return func(m *Manager) {
		m.allowDuplicates = !unique
	}
}

// NewManager builds a Manager.
func NewManager(clock domain.Clock, source CodeSource, opts ...Option) *Manager {
	m := &Manager{
		clock:           clock,
		source:          source,
		quota:           DefaultChallengeQuota,
		allowDuplicates: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateRequest describes a new challenge.
type GenerateRequest struct {
	UserID  uuid.UUID
	Purpose Purpose
	Length  CodeLength
	Level   Level
}

// Generate checks the quota, draws CodesPerChallenge codes and returns a new
// challenge that has recorded CodeGenerated. Nothing is drawn when the quota is exhausted.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest, counter ChallengeCounter) (*Challenge, error) {
	if err := domain.CheckRule(ctx, QuotaRule{Counter: counter, UserID: req.UserID, Limit: m.quota}); err != nil {
		return nil, err
	}

	raw, err := m.source.Generate(CodesPerChallenge, int(req.Length), req.Level.Alphabet(), m.allowDuplicates)
	if err != nil {
		return nil, fmt.Errorf("generate codes: %w", err)
	}
	codes := make([]GeneratedCode, 0, len(raw))
	for _, value := range raw {
		code, err := ParseCode(value)
		if err != nil {
			return nil, err
		}
		codes = append(codes, GeneratedCode{ID: uuid.New(), Value: code.String()})
	}

	now := m.clock.Now()
	event := CodeGenerated{
		ID:          uuid.New(),
		ChallengeID: uuid.New(),
		UserID:      req.UserID,
		Purpose:     req.Purpose,
		Codes:       codes,
		CreatedAt:   now,
		ExpiresAt:   now.AddDate(0, 1, 0),
	}

	challenge := &Challenge{}
	challenge.applyCodeGenerated(event)
	challenge.Record(event)
	return challenge, nil
}

// Redeem marks one code as used after checking purpose, prior use and expiry.
func (m *Manager) Redeem(code *SecurityCode, purpose Purpose) error {
	challenge := code.Challenge()
	if challenge.Purpose() != purpose {
		return &PurposeMismatchError{Challenge: challenge.Purpose(), Requested: purpose}
	}
	if code.IsUsed() {
		return &AlreadyUsedError{UsedAt: *code.usedAt}
	}
	now := m.clock.Now()
	if challenge.IsExpired(now) {
		return ErrChallengeExpired
	}

	event := CodeRedeemed{
		ID:          uuid.New(),
		CodeID:      code.ID(),
		ChallengeID: challenge.ID(),
		UserID:      challenge.UserID(),
		Purpose:     challenge.Purpose(),
		UsedAt:      now,
	}
	code.applyCodeRedeemed(event)
	code.Record(event)
	return nil
}

// InvalidateAll expires every code of an active challenge at once.
func (m *Manager) InvalidateAll(challenge *Challenge) error {
	if challenge.IsInvalidated() {
		return ErrNoActiveChallenge
	}
	event := ChallengeInvalidated{
		ID:            uuid.New(),
		ChallengeID:   challenge.ID(),
		UserID:        challenge.UserID(),
		Purpose:       challenge.Purpose(),
		InvalidatedAt: m.clock.Now(),
	}
	challenge.applyChallengeInvalidated(event)
	challenge.Record(event)
	return nil
}
