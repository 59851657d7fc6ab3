package auth

import "crypto/subtle"

// VerifyMasterPasswordHash compares the client-derived hash against the stored one
// in time independent of where the inputs first differ.
func VerifyMasterPasswordHash(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
