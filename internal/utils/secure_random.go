package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// oauthStateBytes gives 128 bits of entropy, a 22 character state value.
const oauthStateBytes = 16

// NewOAuthState returns a URL and cookie safe random value for the OAuth state round trip.
func NewOAuthState() (string, error) {
	return randomURLToken(oauthStateBytes)
}

func randomURLToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
