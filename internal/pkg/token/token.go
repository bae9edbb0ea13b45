package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSecret returns 32 random bytes hex-encoded. Used as the throwaway
// password for accounts registered without one; 64 chars fits bcrypt's
// 72-byte input limit.
func NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
