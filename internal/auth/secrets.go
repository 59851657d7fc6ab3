package auth

import "errors"

// Secrets holds the two signing keys. They are loaded once and never mutated.
type Secrets struct {
	Access  []byte
	Refresh []byte
}

// NewSecrets validates that both keys are present and not interchangeable.
func NewSecrets(access, refresh string) (Secrets, error) {
	if access == "" || refresh == "" {
		return Secrets{}, errors.New("access and refresh secrets are required")
	}
	if access == refresh {
		return Secrets{}, errors.New("access and refresh secrets must differ")
	}
	return Secrets{Access: []byte(access), Refresh: []byte(refresh)}, nil
}
