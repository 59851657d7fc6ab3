package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// TokenRequest is the form body of POST /identity/connect/token.
// Other client fields (scope, client_id, device*) are accepted and ignored.
type TokenRequest struct {
	GrantType    string `form:"grant_type"`
	Username     string `form:"username"`
	Password     string `form:"password"`
	RefreshToken string `form:"refresh_token"`
}

// PreloginRequest payload.
type PreloginRequest struct {
	Email string `json:"email"`
}

// PreloginResponse advertises KDF parameters.
type PreloginResponse struct {
	Kdf           int `json:"kdf"`
	KdfIterations int `json:"kdfIterations"`
}

// AsymmetricKeys carries the client-generated key pair.
type AsymmetricKeys struct {
	PublicKey           string `json:"publicKey"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name               *string        `json:"name"`
	Email              string         `json:"email"`
	MasterPasswordHash string         `json:"masterPasswordHash"`
	MasterPasswordHint *string        `json:"masterPasswordHint"`
	UserSymmetricKey   string         `json:"userSymmetricKey"`
	UserAsymmetricKeys AsymmetricKeys `json:"userAsymmetricKeys"`
	Kdf                int            `json:"kdf"`
	KdfIterations      int            `json:"kdfIterations"`
}

// Validate checks the fields a new account cannot be created without.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 256), is.Email),
		validation.Field(&r.MasterPasswordHash, validation.Required),
		validation.Field(&r.UserSymmetricKey, validation.Required),
		validation.Field(&r.Kdf, validation.In(0, 1)),
		validation.Field(&r.KdfIterations, validation.Min(0)),
	)
}

// ProfileResponse is the authenticated caller's profile, built from token claims.
type ProfileResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Premium       bool   `json:"premium"`
	Object        string `json:"object"`
}
