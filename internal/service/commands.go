package service

import "github.com/google/uuid"

// Command is a request to change state. Commands carry raw input; handlers
// turn it into value objects before any rule is checked.
type Command interface {
	CommandName() string
}

// GenerateCodes issues a new challenge of five codes.
type GenerateCodes struct {
	UserID  uuid.UUID
	Length  int
	Level   string
	Purpose string
}

// RedeemCode marks one code as used.
type RedeemCode struct {
	UserID  uuid.UUID
	Code    string
	Purpose string
}

// InvalidateCodes expires the user's active challenge for a purpose.
type InvalidateCodes struct {
	UserID  uuid.UUID
	Purpose string
}

// SignUp registers a user under a caller-chosen id.
type SignUp struct {
	ID       uuid.UUID
	Username string
	Email    string
	Password string
}

type SignIn struct {
	Email    string
	Password string
}

type Logout struct {
	UserID uuid.UUID
}

type ChangeEmail struct {
	UserID uuid.UUID
	Email  string
}

type ChangePassword struct {
	UserID   uuid.UUID
	Password string
}

// ChangeStatus applies suspend, soft_delete or restore.
type ChangeStatus struct {
	UserID    uuid.UUID
	Operation string
}

// ResetPassword redeems a password_reset code and sets a new password in one
// unit of work.
type ResetPassword struct {
	UserID   uuid.UUID
	Code     string
	Password string
}

func (GenerateCodes) CommandName() string   { return "security.generate_codes" }
func (RedeemCode) CommandName() string      { return "security.redeem_code" }
func (InvalidateCodes) CommandName() string { return "security.invalidate_codes" }
func (SignUp) CommandName() string          { return "user.sign_up" }
func (SignIn) CommandName() string          { return "user.sign_in" }
func (Logout) CommandName() string          { return "user.logout" }
func (ChangeEmail) CommandName() string     { return "user.change_email" }
func (ChangePassword) CommandName() string  { return "user.change_password" }
func (ChangeStatus) CommandName() string    { return "user.change_status" }
func (ResetPassword) CommandName() string   { return "user.reset_password" }
