package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warden/internal/api/dto"
	"github.com/spec-kit/warden/internal/auth"
	"github.com/spec-kit/warden/internal/domain"
	"github.com/spec-kit/warden/internal/service"
	apperrors "github.com/spec-kit/warden/pkg/util"
)

// AccountsHandler exposes prelogin, registration and profile endpoints.
type AccountsHandler struct {
	identity *service.IdentityService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(identityService *service.IdentityService) *AccountsHandler {
	return &AccountsHandler{identity: identityService}
}

// Prelogin handles POST /identity/accounts/prelogin.
func (h *AccountsHandler) Prelogin(c *fiber.Ctx) error {
	var req dto.PreloginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	result, err := h.identity.Prelogin(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.PreloginResponse{Kdf: int(result.Kdf), KdfIterations: result.KdfIterations})
}

// Register handles POST /identity/accounts/register/finish.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	_, err := h.identity.Register(c.UserContext(), service.RegisterInput{
		Name:               req.Name,
		Email:              req.Email,
		MasterPasswordHash: req.MasterPasswordHash,
		MasterPasswordHint: req.MasterPasswordHint,
		Key:                req.UserSymmetricKey,
		PublicKey:          req.UserAsymmetricKeys.PublicKey,
		PrivateKey:         req.UserAsymmetricKeys.EncryptedPrivateKey,
		Kdf:                domain.KdfType(req.Kdf),
		KdfIterations:      req.KdfIterations,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{})
}

// Profile handles GET /api/accounts/profile. It reads claims only; no store lookup.
func (h *AccountsHandler) Profile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing or invalid token")
	}
	return c.JSON(dto.ProfileResponse{
		ID:            claims.Subject,
		Name:          claims.Name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Premium:       claims.Premium,
		Object:        "profile",
	})
}

func validationError(err error) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequest(err.Error())
	}
	details := make(map[string]any, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		details[field] = fieldErr.Error()
	}
	return apperrors.NewDomainError(apperrors.CodeBadRequest, "invalid payload", http.StatusBadRequest, details)
}
