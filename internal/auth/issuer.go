package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/warden/internal/domain"
)

const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	TokenTypeBearer = "Bearer"
)

// UserDecryptionOptions tells clients how to unlock the vault.
type UserDecryptionOptions struct {
	HasMasterPassword bool   `json:"HasMasterPassword"`
	Object            string `json:"object"`
}

// TokenResponse is the token endpoint body. Field names are fixed by the clients.
type TokenResponse struct {
	AccessToken           string                `json:"access_token"`
	ExpiresIn             int64                 `json:"expires_in"`
	TokenType             string                `json:"token_type"`
	RefreshToken          string                `json:"refresh_token"`
	Key                   string                `json:"Key"`
	PrivateKey            string                `json:"PrivateKey"`
	Kdf                   domain.KdfType        `json:"Kdf"`
	KdfIterations         int                   `json:"KdfIterations"`
	ResetMasterPassword   bool                  `json:"ResetMasterPassword"`
	ForcePasswordReset    bool                  `json:"ForcePasswordReset"`
	UserDecryptionOptions UserDecryptionOptions `json:"UserDecryptionOptions"`
}

// TokenIssuer mints access/refresh pairs for verified identities.
type TokenIssuer struct {
	codec      *ClaimsCodec
	secrets    Secrets
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer. Non-positive TTLs fall back to 1h / 30d.
func NewTokenIssuer(codec *ClaimsCodec, secrets Secrets, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenIssuer{codec: codec, secrets: secrets, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue signs a fresh pair valid from now. Premium and email_verified are always granted.
func (i *TokenIssuer) Issue(identity *domain.Identity, now time.Time) (*TokenResponse, error) {
	if identity == nil {
		return nil, fmt.Errorf("issue tokens: nil identity")
	}

	access, err := i.codec.Encode(i.claimsFor(identity, now, i.accessTTL), i.secrets.Access)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.codec.Encode(i.claimsFor(identity, now, i.refreshTTL), i.secrets.Refresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:   access,
		ExpiresIn:     int64(i.accessTTL / time.Second),
		TokenType:     TokenTypeBearer,
		RefreshToken:  refresh,
		Key:           identity.Key,
		PrivateKey:    identity.PrivateKey,
		Kdf:           identity.KdfType,
		KdfIterations: identity.KdfIterations,
		UserDecryptionOptions: UserDecryptionOptions{
			HasMasterPassword: true,
			Object:            "userDecryptionOptions",
		},
	}, nil
}

func (i *TokenIssuer) claimsFor(identity *domain.Identity, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		Premium:       true,
		Name:          identity.DisplayName(),
		Email:         identity.Email,
		EmailVerified: true,
		AMR:           []string{domain.AuthMethodApplication},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
