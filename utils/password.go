package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// GenerateResetToken returns a raw reset token for the email link, the
// sha256 hex digest that gets stored, and the expiry (2 hours out). Only
// the digest ever touches the database.
func GenerateResetToken() (token string, hashed string, expiresAt time.Time, err error) {
	raw := make([]byte, 20)
	if _, err = rand.Read(raw); err != nil {
		return "", "", time.Time{}, err
	}
	token = hex.EncodeToString(raw)
	hashed = HashToken(token)
	expiresAt = time.Now().Add(2 * time.Hour)
	return token, hashed, expiresAt, nil
}

// HashToken returns the sha256 hex digest of a raw reset token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
