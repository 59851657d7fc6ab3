package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Decode failures. Callers fold all of them into a single generic rejection.
var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
	ErrExpired          = errors.New("token expired")
	ErrNotYetValid      = errors.New("token not yet valid")

	ErrInvalidClaims = errors.New("claims require exp after nbf")
	ErrEmptySecret   = errors.New("signing secret is empty")
)

// Claims describes the JWT payload shared by access and refresh tokens.
// The two kinds differ only by the secret that signed them.
type Claims struct {
	Premium       bool     `json:"premium"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	AMR           []string `json:"amr"`
	jwt.RegisteredClaims
}

// ClaimsCodec signs and verifies claim sets with HS256.
type ClaimsCodec struct {
	now func() time.Time
}

// CodecOption customizes a ClaimsCodec.
type CodecOption func(*ClaimsCodec)

// WithClock overrides the clock used to check exp and nbf.
func WithClock(now func() time.Time) CodecOption {
	return func(c *ClaimsCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClaimsCodec builds a codec using the wall clock unless overridden.
func NewClaimsCodec(opts ...CodecOption) *ClaimsCodec {
	c := &ClaimsCodec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode signs claims with secret.
func (c *ClaimsCodec) Encode(claims *Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if claims == nil || claims.ExpiresAt == nil || claims.NotBefore == nil ||
		!claims.ExpiresAt.After(claims.NotBefore.Time) {
		return "", ErrInvalidClaims
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign claims: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and validity window of token and returns its claims.
func (c *ClaimsCodec) Decode(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	// Both bounds are part of the claim set; a signed token without nbf is not one we issued.
	if claims.NotBefore == nil || !claims.ExpiresAt.After(claims.NotBefore.Time) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, ErrInvalidClaims)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrNotYetValid, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
