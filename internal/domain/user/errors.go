package user

import "github.com/spec-kit/account-security/internal/domain"

var (
	ErrUserNotFound       = &domain.NotFoundError{Resource: "user"}
	ErrAlreadySuspended   = &domain.ConflictError{Reason: "user already suspended"}
	ErrAlreadySoftDeleted = &domain.ConflictError{Reason: "user already deleted"}
	ErrCannotRestore      = &domain.ConflictError{Reason: "user is neither suspended nor deleted"}
	ErrEmailUnchanged     = &domain.ConflictError{Reason: "new email must differ from the current one"}
	ErrUnknownOperation   = domain.NewFormatError("operation", "unknown status operation")
)

// ErrInvalidCredentials does not say whether the email or the password was wrong.
var ErrInvalidCredentials = &credentialsError{}

type credentialsError struct{}

func (*credentialsError) Error() string { return "invalid credentials" }

func (*credentialsError) Is(target error) bool { return target == domain.ErrUnauthenticated }
