package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomID returns length random bytes hex encoded.
func GenerateRandomID(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
