package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-security/internal/domain"
)

func TestParsePurpose(t *testing.T) {
	for _, raw := range []string{"2fa", "email_verification", "password_reset", "account_activation", " Transaction_Approval "} {
		p, err := ParsePurpose(raw)
		require.NoError(t, err, raw)
		assert.True(t, p.Valid())
	}

	_, err := ParsePurpose("sms")
	var formatErr *domain.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "purpose", formatErr.Field)
}

func TestParseLevelAlphabets(t *testing.T) {
	low, err := ParseLevel("LOW")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", low.Alphabet())

	medium, _ := ParseLevel("medium")
	high, _ := ParseLevel("high")
	ultra, _ := ParseLevel("ultra")
	assert.Len(t, medium.Alphabet(), 36)
	assert.Len(t, high.Alphabet(), 62)
	assert.Greater(t, len(ultra.Alphabet()), 62)

	_, err = ParseLevel("extreme")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseCodeLength(t *testing.T) {
	_, err := ParseCodeLength(5)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = ParseCodeLength(13)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := ParseCodeLength(12)
	require.NoError(t, err)
	assert.Equal(t, CodeLength(12), n)
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode("  A1b2C3  ")
	require.NoError(t, err)
	assert.Equal(t, "A1b2C3", code.String())
	assert.True(t, code.Equal(Code{value: "A1b2C3"}))
	assert.False(t, code.IsZero())

	for _, raw := range []string{"", "   ", "12345", "1234567890123", "abc def1", "ñandú123"} {
		_, err := ParseCode(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("USED")
	require.NoError(t, err)
	assert.Equal(t, StatusUsed, s)

	_, err = ParseStatus("expired")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRestoreChallengeRoundTrip(t *testing.T) {
	m, clock := newTestManager(t)
	challenge := generate(t, m, PurposeAccountActivation)
	require.NoError(t, m.Redeem(challenge.Codes()[0], PurposeAccountActivation))

	restored, err := RestoreChallenge(challenge.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, challenge.Snapshot(), restored.Snapshot())
	assert.Zero(t, restored.PendingEvents())
	for _, sc := range restored.Codes() {
		assert.Same(t, restored, sc.Challenge())
	}
	assert.False(t, restored.IsExpired(clock.Now()))
}

func TestRestoreChallengeRejectsBrokenRows(t *testing.T) {
	m, _ := newTestManager(t)
	snap := generate(t, m, PurposeTwoFactor).Snapshot()

	broken := snap
	broken.Codes = append([]CodeSnapshot(nil), snap.Codes...)
	broken.Codes[0].Status = StatusUsed
	_, err := RestoreChallenge(broken)
	assert.ErrorIs(t, err, domain.ErrValidation)

	broken = snap
	broken.Purpose = "sms"
	_, err = RestoreChallenge(broken)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
