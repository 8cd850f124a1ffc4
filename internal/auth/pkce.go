// Package auth provides the OAuth2 building blocks for the customer
// identity flow: PKCE generation, state signing, and token endpoint access.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCE code verifier entropy bounds. RFC 7636 requires the encoded verifier
// to be 43-128 characters, which maps to 32-96 raw bytes of base64url input.
const (
	MinVerifierBytes = 32
	MaxVerifierBytes = 96
)

// NewCodeVerifier generates a cryptographically random PKCE code verifier
// from nBytes of entropy, encoded as unpadded base64url.
func NewCodeVerifier(nBytes int) (string, error) {
	if nBytes < MinVerifierBytes {
		return "", fmt.Errorf("verifier must be at least %d bytes, got %d", MinVerifierBytes, nBytes)
	}
	if nBytes > MaxVerifierBytes {
		return "", fmt.Errorf("verifier must be at most %d bytes, got %d", MaxVerifierBytes, nBytes)
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verifier: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ChallengeS256 computes the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)). Deterministic, no side effects.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
