package user

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-security/internal/domain"
)

const (
	DefaultBcryptCost = 12
	MinPasswordLength = 6
	maxEmailLength    = 254
	minUsernameLength = 3
	maxUsernameLength = 64
)

// Email is a normalized, syntactically valid address.
type Email struct {
	value string
}

// ParseEmail trims and lower-cases the address before validating it.
func ParseEmail(raw string) (Email, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return Email{}, domain.NewFormatError("email", "must not be blank")
	}
	if len(value) > maxEmailLength {
		return Email{}, domain.NewFormatError("email", "too long")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return Email{}, domain.NewFormatError("email", "not a valid email")
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }

func (e Email) Equal(other Email) bool { return e.value == other.value }

// Username is a display handle.
type Username struct {
	value string
}

// ParseUsername rejects blank names, control characters and lengths outside 3..64.
func ParseUsername(raw string) (Username, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Username{}, domain.NewFormatError("username", "must not be blank")
	}
	n := utf8.RuneCountInString(value)
	if n < minUsernameLength || n > maxUsernameLength {
		return Username{}, domain.NewFormatError("username", "must be between 3 and 64 characters")
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return Username{}, domain.NewFormatError("username", "contains control characters")
		}
	}
	return Username{value: value}, nil
}

func (u Username) String() string { return u.value }

func (u Username) Equal(other Username) bool { return u.value == other.value }

// HashedPassword holds a bcrypt hash. It never holds plaintext.
type HashedPassword struct {
	hash string
}

// HashPassword validates the plaintext and hashes it. A cost of zero selects DefaultBcryptCost.
func HashPassword(plain string, cost int) (HashedPassword, error) {
	if utf8.RuneCountInString(plain) < MinPasswordLength {
		return HashedPassword{}, domain.NewFormatError("password", "must be at least 6 characters")
	}
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return HashedPassword{}, domain.NewFormatError("password", "must be at most 72 bytes")
		}
		return HashedPassword{}, err
	}
	return HashedPassword{hash: string(hashed)}, nil
}

// HashedPasswordFromHash wraps an existing hash without re-hashing it.
func HashedPasswordFromHash(hash string) (HashedPassword, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return HashedPassword{}, domain.NewFormatError("password", "not a bcrypt hash")
	}
	return HashedPassword{hash: hash}, nil
}

// Match compares plaintext against the hash in constant time.
func (p HashedPassword) Match(plain string) bool {
	if p.hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(plain)) == nil
}

func (p HashedPassword) String() string { return p.hash }

// Credentials pairs the login email with the password hash.
type Credentials struct {
	Email    Email
	Password HashedPassword
}
