package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Generate returns a new opaque token value: 32 bytes from crypto/rand,
// base64url encoded. The value carries no session or student data; all
// meaning comes from the store lookup.
func Generate() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Fingerprint returns the SHA-256 hex digest of a token value. Audit and
// log entries record fingerprints only; a raw token is a bearer secret for
// its validity window and must never be persisted outside the token store.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
