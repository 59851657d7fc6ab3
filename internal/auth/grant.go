package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/warden/internal/domain"
	apperrors "github.com/spec-kit/warden/pkg/util"
)

// Rejection messages. Unknown accounts and wrong hashes share one message so the
// endpoint does not reveal which emails are registered.
const (
	msgInvalidCredentials  = "invalid credentials"
	msgInvalidRefreshToken = "invalid refresh token"
	msgInvalidUser         = "invalid user"
	msgUnsupportedGrant    = "unsupported grant_type"
)

// GrantRequest carries the raw token endpoint fields.
type GrantRequest struct {
	GrantType    string
	Username     string
	Password     string
	RefreshToken string
}

// Grant is one of PasswordGrant, RefreshGrant or UnsupportedGrant.
type Grant interface {
	Type() string
}

// PasswordGrant authenticates with an email and master-password hash.
type PasswordGrant struct {
	Username string
	Password string
}

// RefreshGrant exchanges a refresh token for a new pair.
type RefreshGrant struct {
	RefreshToken string
}

// UnsupportedGrant is any grant_type the endpoint does not handle.
type UnsupportedGrant struct {
	GrantType string
}

func (PasswordGrant) Type() string      { return string(domain.GrantTypePassword) }
func (RefreshGrant) Type() string       { return string(domain.GrantTypeRefreshToken) }
func (g UnsupportedGrant) Type() string { return g.GrantType }

// ParseGrant dispatches on an exact match of grant_type.
func ParseGrant(req GrantRequest) Grant {
	switch domain.GrantType(req.GrantType) {
	case domain.GrantTypePassword:
		return PasswordGrant{Username: req.Username, Password: req.Password}
	case domain.GrantTypeRefreshToken:
		return RefreshGrant{RefreshToken: req.RefreshToken}
	default:
		return UnsupportedGrant{GrantType: req.GrantType}
	}
}

// GrantHandler resolves a grant to a verified identity. It never writes and never retries.
type GrantHandler struct {
	store         CredentialStore
	codec         *ClaimsCodec
	refreshSecret []byte
}

// NewGrantHandler builds a handler that verifies refresh tokens with the refresh secret only.
func NewGrantHandler(store CredentialStore, codec *ClaimsCodec, secrets Secrets) *GrantHandler {
	return &GrantHandler{store: store, codec: codec, refreshSecret: secrets.Refresh}
}

// Evaluate returns the identity a grant authenticates, or a DomainError.
func (h *GrantHandler) Evaluate(ctx context.Context, grant Grant) (*domain.Identity, error) {
	switch g := grant.(type) {
	case PasswordGrant:
		return h.evaluatePassword(ctx, g)
	case RefreshGrant:
		return h.evaluateRefresh(ctx, g)
	default:
		return nil, apperrors.NewBadRequest(msgUnsupportedGrant)
	}
}

func (h *GrantHandler) evaluatePassword(ctx context.Context, g PasswordGrant) (*domain.Identity, error) {
	if g.Username == "" {
		return nil, apperrors.NewBadRequest("missing username")
	}
	if g.Password == "" {
		return nil, apperrors.NewBadRequest("missing password")
	}

	identity, err := h.store.FindByEmail(ctx, domain.NormalizeEmail(g.Username))
	if err != nil {
		return nil, storeFailure(err)
	}
	if identity == nil {
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}
	if !VerifyMasterPasswordHash(identity.MasterPasswordHash, g.Password) {
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}
	return identity, nil
}

func (h *GrantHandler) evaluateRefresh(ctx context.Context, g RefreshGrant) (*domain.Identity, error) {
	if g.RefreshToken == "" {
		return nil, apperrors.NewBadRequest("missing refresh_token")
	}

	claims, err := h.codec.Decode(g.RefreshToken, h.refreshSecret)
	if err != nil || claims.Subject == "" {
		return nil, apperrors.NewUnauthorized(msgInvalidRefreshToken)
	}

	identity, err := h.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, storeFailure(err)
	}
	if identity == nil {
		return nil, apperrors.NewUnauthorized(msgInvalidUser)
	}
	return identity, nil
}

func storeFailure(err error) error {
	if errors.Is(err, domain.ErrCorruptIdentity) {
		return apperrors.NewInternalError(err)
	}
	return apperrors.NewStorageError(err)
}
