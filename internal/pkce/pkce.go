// Package pkce implements RFC 7636 proof keys (S256 only).
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

// MethodS256 is the only challenge method issued.
const MethodS256 = "S256"

// tokenBytes yields 43 base64url characters, the RFC 7636 minimum verifier length.
const tokenBytes = 32

// GenerateVerifier returns a fresh 43-character URL-safe code verifier.
func GenerateVerifier() (string, error) {
	return RandomToken()
}

// RandomToken returns 32 random bytes encoded as unpadded base64url.
// Used for verifiers, state tokens and nonces alike.
func RandomToken() (string, error) {
	var b [tokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// ChallengeFromVerifier derives the S256 challenge for verifier.
func ChallengeFromVerifier(verifier string) (string, error) {
	if strings.TrimSpace(verifier) == "" {
		return "", apperrors.InvalidArgument("code verifier cannot be blank")
	}
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// Verify reports whether challenge was derived from verifier. Blank input never verifies.
func Verify(verifier, challenge string) bool {
	if strings.TrimSpace(challenge) == "" {
		return false
	}
	want, err := ChallengeFromVerifier(verifier)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(challenge)) == 1
}
