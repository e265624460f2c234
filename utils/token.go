package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	SignInTokenExpiry   = 15 * time.Minute
	SignInTokenCooldown = 1 * time.Minute
)

// GenerateSignInToken returns a 64-character hex token for a
// passwordless sign-in link.
func GenerateSignInToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}

// HashSignInToken hashes a sign-in token for storage. The raw token is
// only ever present in the emailed link.
func HashSignInToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckSignInToken reports whether token matches the stored hash.
func CheckSignInToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
