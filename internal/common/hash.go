package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 of the given parts in order, separating them with a NUL
// byte so that ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}
