package security

import (
	"fmt"
	"strings"

	"github.com/spec-kit/account-security/internal/domain"
)

const (
	MinCodeLength = 6
	MaxCodeLength = 12
)

// Level selects the alphabet codes are drawn from.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
	LevelUltra  Level = "ultra"
)

const (
	digits  = "0123456789"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	symbols = "!@#$%^&*()-_=+[]{}|;:,.<>?/"
)

// ParseLevel accepts low, medium, high or ultra.
func ParseLevel(raw string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(raw)))
	if level.Alphabet() == "" {
		return "", domain.NewFormatError("security_level", "unknown security level "+raw)
	}
	return level, nil
}

// Alphabet returns the characters available at this level, or "" for an unknown level.
func (l Level) Alphabet() string {
	switch l {
	case LevelLow:
		return digits
	case LevelMedium:
		return digits + upper
	case LevelHigh:
		return digits + upper + lower
	case LevelUltra:
		return digits + upper + lower + symbols
	}
	return ""
}

// CodeLength is the number of characters in each generated code.
type CodeLength int

// ParseCodeLength enforces the 6..12 range.
func ParseCodeLength(n int) (CodeLength, error) {
	if n < MinCodeLength || n > MaxCodeLength {
		return 0, domain.NewFormatError("length", fmt.Sprintf("must be between %d and %d", MinCodeLength, MaxCodeLength))
	}
	return CodeLength(n), nil
}

// Code is a single code string as handed to the user.
type Code struct {
	value string
}

// ParseCode validates length and character set. Every level's alphabet is a
// subset of the ultra alphabet, so that is the accepted character set.
func ParseCode(raw string) (Code, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Code{}, domain.NewFormatError("code", "must not be blank")
	}
	if len(value) < MinCodeLength || len(value) > MaxCodeLength {
		return Code{}, domain.NewFormatError("code", fmt.Sprintf("must be between %d and %d characters", MinCodeLength, MaxCodeLength))
	}
	alphabet := LevelUltra.Alphabet()
	for i := 0; i < len(value); i++ {
		if !strings.ContainsRune(alphabet, rune(value[i])) {
			return Code{}, domain.NewFormatError("code", "contains unsupported characters")
		}
	}
	return Code{value: value}, nil
}

func (c Code) String() string { return c.value }

// Equal compares by value.
func (c Code) Equal(other Code) bool { return c.value == other.value }

// IsZero reports whether c was never parsed.
func (c Code) IsZero() bool { return c.value == "" }
