package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/warden/pkg/util"
)

const (
	claimsKey    = "auth_claims"
	bearerPrefix = "Bearer "
)

type tokenDecoder interface {
	Decode(token string, secret []byte) (*Claims, error)
}

// RequestAuthenticator validates bearer access tokens on protected routes.
// Requests are authenticated from the signed token alone; no store lookup happens here.
type RequestAuthenticator struct {
	decoder      tokenDecoder
	accessSecret []byte
}

// NewRequestAuthenticator constructs the guard. Only the access secret is ever consulted.
func NewRequestAuthenticator(decoder tokenDecoder, secrets Secrets) *RequestAuthenticator {
	return &RequestAuthenticator{decoder: decoder, accessSecret: secrets.Access}
}

// Authenticate turns an Authorization header value into verified claims.
func (a *RequestAuthenticator) Authenticate(header string) (*Claims, error) {
	if !strings.HasPrefix(header, bearerPrefix) || len(header) == len(bearerPrefix) {
		return nil, apperrors.NewUnauthorized("missing or invalid token")
	}

	claims, err := a.decoder.Decode(header[len(bearerPrefix):], a.accessSecret)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return claims, nil
}

// Handle enforces authentication for protected routes.
func (a *RequestAuthenticator) Handle(c *fiber.Ctx) error {
	claims, err := a.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
