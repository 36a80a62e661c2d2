package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// ShareTokenBytes is the entropy of a share token: 256 bits.
const ShareTokenBytes = 32

// GenerateToken returns n bytes from crypto/rand, base64url encoded without padding.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateShareToken returns an unguessable token for a shared profile link.
func GenerateShareToken() (string, error) {
	return GenerateToken(ShareTokenBytes)
}

// LooksLikeShareToken reports whether s has the shape GenerateShareToken
// produces, so malformed tokens can be rejected before a lookup.
func LooksLikeShareToken(s string) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(ShareTokenBytes) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
