package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Tokens shorter than minTokenBytes of entropy are never issued.
const (
	minTokenBytes     = 16
	defaultTokenBytes = 32
)

// RandomTokenGenerator issues opaque URL-safe bearer tokens. Size is the number
// of random bytes; values below the minimum fall back to the default.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := defaultTokenBytes
	if g.Size >= minTokenBytes {
		n = g.Size
	}
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("security: token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
