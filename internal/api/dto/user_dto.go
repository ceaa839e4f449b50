package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangeEmailRequest payload for PUT /auth/users/email.
type ChangeEmailRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest payload for PUT /auth/users/password.
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ForgotPasswordRequest payload for POST /auth/password/forgot.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for POST /auth/password/reset.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// ChangeStatusRequest payload for PATCH /users/:id/status.
type ChangeStatusRequest struct {
	Operation string `json:"operation"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
