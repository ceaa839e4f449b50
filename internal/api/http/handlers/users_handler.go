package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/account-security/internal/api/dto"
	"github.com/spec-kit/account-security/internal/auth"
	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/security"
	"github.com/spec-kit/account-security/internal/service"
	apperrors "github.com/spec-kit/account-security/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	commands *service.CommandBus
	queries  *service.QueryBus
	tokens   *auth.TokenManager
}

// NewUsersHandler constructs handler.
func NewUsersHandler(commands *service.CommandBus, queries *service.QueryBus, tokens *auth.TokenManager) *UsersHandler {
	return &UsersHandler{commands: commands, queries: queries, tokens: tokens}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	id := uuid.New()
	if err := h.commands.Dispatch(c.UserContext(), service.SignUp{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}

	view, err := service.Ask[service.UserView](c.UserContext(), h.queries, service.FindUser{UserID: id})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"user": view}})
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.commands.Dispatch(c.UserContext(), service.SignIn{Email: req.Email, Password: req.Password}); err != nil {
		return err
	}
	id, err := service.Ask[uuid.UUID](c.UserContext(), h.queries, service.FindUserIDByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	view, err := service.Ask[service.UserView](c.UserContext(), h.queries, service.FindUser{UserID: id})
	if err != nil {
		return err
	}

	token, exp, err := h.tokens.GenerateToken(view.ID, view.Email)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": view,
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/users/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.commands.Dispatch(c.UserContext(), service.Logout{UserID: principal.User.ID}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeEmail handles PUT /auth/users/email.
func (h *UsersHandler) ChangeEmail(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ChangeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.ChangeEmail{UserID: principal.User.ID, Email: req.Email}); err != nil {
		return err
	}
	return h.respondUser(c, principal.User.ID, http.StatusOK)
}

// ChangePassword handles PUT /auth/users/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.ChangePassword{UserID: principal.User.ID, Password: req.Password}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ForgotPassword handles POST /auth/password/forgot. It issues a
// password_reset challenge delivered by the code notification and answers
// 202 whether or not the email belongs to an account.
func (h *UsersHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	id, err := service.Ask[uuid.UUID](c.UserContext(), h.queries, service.FindUserIDByEmail{Email: req.Email})
	if errors.Is(err, domain.ErrUnauthenticated) {
		return c.SendStatus(http.StatusAccepted)
	}
	if err != nil {
		return err
	}
	err = h.commands.Dispatch(c.UserContext(), service.GenerateCodes{
		UserID:  id,
		Purpose: security.PurposePasswordReset.String(),
	})
	if err != nil && !errors.Is(err, domain.ErrBusinessRule) {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// ResetPassword handles POST /auth/password/reset. The caller proves control
// of the account with a password_reset code.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	id, err := service.Ask[uuid.UUID](c.UserContext(), h.queries, service.FindUserIDByEmail{Email: req.Email})
	if err != nil {
		return err
	}
	if err := h.commands.Dispatch(c.UserContext(), service.ResetPassword{
		UserID:   id,
		Code:     req.Code,
		Password: req.Password,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeStatus handles PATCH /users/:id/status.
func (h *UsersHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.ChangeStatus{UserID: id, Operation: req.Operation}); err != nil {
		return err
	}
	return h.respondUser(c, id, http.StatusOK)
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.respondUser(c, id, http.StatusOK)
}

func (h *UsersHandler) respondUser(c *fiber.Ctx, id uuid.UUID, status int) error {
	view, err := service.Ask[service.UserView](c.UserContext(), h.queries, service.FindUser{UserID: id})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": fiber.Map{"user": view}})
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid id", map[string]any{"field": "id"})
	}
	return id, nil
}
