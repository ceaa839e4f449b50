package security

import (
	"strings"

	"github.com/spec-kit/account-security/internal/domain"
)

// Purpose is the business reason a challenge was issued.
type Purpose string

const (
	PurposeTwoFactor           Purpose = "2fa"
	PurposeEmailVerification   Purpose = "email_verification"
	PurposePasswordReset       Purpose = "password_reset"
	PurposeAccountActivation   Purpose = "account_activation"
	PurposeTransactionApproval Purpose = "transaction_approval"
)

var purposes = []Purpose{
	PurposeTwoFactor,
	PurposeEmailVerification,
	PurposePasswordReset,
	PurposeAccountActivation,
	PurposeTransactionApproval,
}

// ParsePurpose accepts one of the known purpose identifiers.
func ParsePurpose(raw string) (Purpose, error) {
	candidate := Purpose(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", domain.NewFormatError("purpose", "unknown purpose "+strings.TrimSpace(raw))
}

// Valid reports whether p is one of the enumerated purposes.
func (p Purpose) Valid() bool {
	for _, known := range purposes {
		if p == known {
			return true
		}
	}
	return false
}

func (p Purpose) String() string { return string(p) }

// Status is the redemption state of a single code.
type Status string

const (
	StatusUnused Status = "unused"
	StatusUsed   Status = "used"
)

// ParseStatus accepts "unused" or "used".
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusUnused:
		return StatusUnused, nil
	case StatusUsed:
		return StatusUsed, nil
	}
	return "", domain.NewFormatError("status", "unknown status "+raw)
}

func (s Status) String() string { return string(s) }
