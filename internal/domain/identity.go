package domain

import (
	"errors"
	"strings"
	"time"
)

// KdfType identifies the client-side key derivation function.
type KdfType int

const (
	KdfTypePBKDF2 KdfType = 0
	KdfTypeArgon2 KdfType = 1
)

// DefaultKdfIterations is advertised when no account matches a prelogin lookup.
const DefaultKdfIterations = 600000

// ErrCorruptIdentity marks a stored identity record that cannot be decoded.
var ErrCorruptIdentity = errors.New("corrupt identity record")

// Identity is the stored account record used as the trust anchor for token issuance.
type Identity struct {
	ID                 string    `db:"id" json:"id"`
	Name               *string   `db:"name" json:"name,omitempty"`
	Email              string    `db:"email" json:"email"`
	EmailVerified      bool      `db:"email_verified" json:"email_verified"`
	MasterPasswordHash string    `db:"master_password_hash" json:"master_password_hash"`
	MasterPasswordHint *string   `db:"master_password_hint" json:"master_password_hint,omitempty"`
	Key                string    `db:"key" json:"key"`
	PrivateKey         string    `db:"private_key" json:"private_key"`
	PublicKey          string    `db:"public_key" json:"public_key"`
	KdfType            KdfType   `db:"kdf_type" json:"kdf_type"`
	KdfIterations      int       `db:"kdf_iterations" json:"kdf_iterations"`
	SecurityStamp      string    `db:"security_stamp" json:"security_stamp"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the account name or a generic placeholder.
func (i *Identity) DisplayName() string {
	if i.Name == nil || strings.TrimSpace(*i.Name) == "" {
		return "User"
	}
	return *i.Name
}

// NormalizeEmail lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
