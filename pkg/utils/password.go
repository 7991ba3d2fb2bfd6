package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes        = 16
	pbkdf2Iterations = 100_000
	pbkdf2KeyLength  = 32
)

// HashPassword derives a fresh salt and PBKDF2 hash for password.
// Both values are hex-encoded and stored separately on the user.
func HashPassword(password string) (salt string, hash string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed generating salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return salt, HashPasswordWithSalt(password, salt), nil
}

// HashPasswordWithSalt recomputes the deterministic hash for a candidate
// password against a stored salt.
func HashPasswordWithSalt(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// CheckPassword verifies a candidate password against the stored salt and hash.
func CheckPassword(password, salt, hash string) bool {
	candidate := HashPasswordWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}
