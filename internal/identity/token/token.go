// Package token mints guest session tokens and derives their storage digests.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// byteLength is the entropy of a guest token before encoding.
const byteLength = 32

// Generate returns a URL-safe random token.
func Generate() (string, error) {
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate guest token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash is the lookup digest stored in place of the token.
func Hash(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}
