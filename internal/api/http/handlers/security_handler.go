package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-security/internal/api/dto"
	"github.com/spec-kit/account-security/internal/service"
)

// SecurityHandler exposes code endpoints for the authenticated user.
type SecurityHandler struct {
	commands *service.CommandBus
	queries  *service.QueryBus
}

// NewSecurityHandler constructs handler.
func NewSecurityHandler(commands *service.CommandBus, queries *service.QueryBus) *SecurityHandler {
	return &SecurityHandler{commands: commands, queries: queries}
}

// Generate handles POST /security/codes. Codes are delivered out of band; the
// response only acknowledges the request.
func (h *SecurityHandler) Generate(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.GenerateCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.GenerateCodes{
		UserID:  principal.User.ID,
		Length:  req.Length,
		Level:   req.Level,
		Purpose: req.Purpose,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// Redeem handles POST /security/codes/redeem.
func (h *SecurityHandler) Redeem(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.RedeemCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.RedeemCode{
		UserID:  principal.User.ID,
		Code:    req.Code,
		Purpose: req.Purpose,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Invalidate handles POST /security/codes/invalidate.
func (h *SecurityHandler) Invalidate(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.InvalidateCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.commands.Dispatch(c.UserContext(), service.InvalidateCodes{
		UserID:  principal.User.ID,
		Purpose: req.Purpose,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Challenges handles GET /security/challenges.
func (h *SecurityHandler) Challenges(c *fiber.Ctx) error {
	principal, err := principal(c)
	if err != nil {
		return err
	}
	views, err := service.Ask[[]service.ChallengeView](c.UserContext(), h.queries, service.FindChallenges{UserID: principal.User.ID})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": views})
}
