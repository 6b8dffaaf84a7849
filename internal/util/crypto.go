package util

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenBytes = 32

// GenerateToken returns 256 bits of randomness as lowercase hex.
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// MaskToken keeps a short prefix of a token so log lines can be correlated
// without exposing the full value.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "****"
}
