package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warden/internal/api/dto"
	"github.com/spec-kit/warden/internal/auth"
	"github.com/spec-kit/warden/internal/service"
	apperrors "github.com/spec-kit/warden/pkg/util"
)

// IdentityHandler exposes the token endpoint.
type IdentityHandler struct {
	identity *service.IdentityService
}

// NewIdentityHandler constructs handler.
func NewIdentityHandler(identityService *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identityService}
}

// Token handles POST /identity/connect/token.
func (h *IdentityHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	resp, err := h.identity.Token(c.UserContext(), auth.GrantRequest{
		GrantType:    req.GrantType,
		Username:     req.Username,
		Password:     req.Password,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("Pragma", "no-cache")
	return c.JSON(resp)
}
