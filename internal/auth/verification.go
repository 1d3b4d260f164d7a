package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// generateVerificationToken creates a cryptographically secure random
// token and its one-way hash. Only the hash is ever stored; the
// plaintext is transmitted out-of-band exactly once.
func generateVerificationToken() (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = base64.URLEncoding.EncodeToString(b)
	return plaintext, hashToken(plaintext), nil
}

// hashToken returns the hex-encoded SHA-256 of a token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// tokenMatchesHash compares a plaintext token against a stored hash in
// constant time.
func tokenMatchesHash(plaintext, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(hashToken(plaintext)), []byte(storedHash)) == 1
}
