package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

// stateBytes is the entropy of the anti-CSRF state token (128 bits).
const stateBytes = 16

// State is a fresh anti-CSRF token plus the HMAC signature binding it to
// the server secret. The value travels through the identity provider; the
// signature stays behind in a short-lived cookie.
type State struct {
	Value     string
	Signature string
}

// StateSigner generates and verifies OAuth state parameters using
// HMAC-SHA256 keyed by a server-held secret. The secret is immutable after
// construction so tests can inject a fixed one.
type StateSigner struct {
	secret []byte
}

// NewStateSigner constructs a signer. An empty secret is a deployment
// misconfiguration, not something to tolerate silently; callers should fail
// startup on this error whenever customer login is enabled.
func NewStateSigner(secret []byte) (*StateSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("state signing secret is required")
	}
	return &StateSigner{secret: secret}, nil
}

// Generate produces a fresh random url-safe state token and its signature.
func (s *StateSigner) Generate() (State, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return State{}, fmt.Errorf("failed to generate state: %w", err)
	}

	value := base64.RawURLEncoding.EncodeToString(b)
	return State{Value: value, Signature: s.sign(value)}, nil
}

// Verify recomputes the HMAC over candidate and compares it to signature in
// constant time. Returns false, never an error, when either input is missing
// or the comparison fails.
func (s *StateSigner) Verify(candidate, signature string) bool {
	if candidate == "" || signature == "" {
		return false
	}

	expected := s.sign(candidate)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (s *StateSigner) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
