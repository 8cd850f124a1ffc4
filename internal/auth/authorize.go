// This file handles OAuth2 authorization URL construction.
package auth

import (
	"errors"
	"fmt"
	"net/url"
)

// AuthorizeParams contains parameters for building the authorization URL
// that starts the Authorization-Code-with-PKCE flow (RFC 6749 + RFC 7636).
type AuthorizeParams struct {
	// Required fields
	Endpoint    string // Provider authorization endpoint (absolute URL)
	ClientID    string // OAuth2 client identifier
	RedirectURI string // Callback URL after authorization

	// Standard OAuth2 parameters
	Scope string // Space-separated scopes (e.g., "openid email")
	State string // CSRF protection token (required for security)

	// PKCE parameters (RFC 7636)
	CodeChallenge string // Base64url-encoded SHA256 hash of code_verifier
}

// BuildAuthorizeURL constructs the authorization URL with
// response_type=code and code_challenge_method=S256, URL-encoding every
// parameter per RFC 3986.
func BuildAuthorizeURL(p AuthorizeParams) (string, error) {
	// Validate required fields
	if p.Endpoint == "" {
		return "", errors.New("authorization endpoint is required")
	}
	if p.ClientID == "" {
		return "", errors.New("client_id is required")
	}
	if p.RedirectURI == "" {
		return "", errors.New("redirect_uri is required")
	}
	if p.Scope == "" {
		return "", errors.New("scope is required")
	}
	if p.State == "" {
		return "", errors.New("state is required for CSRF protection")
	}
	if p.CodeChallenge == "" {
		return "", errors.New("code_challenge is required")
	}

	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("authorization endpoint must be an absolute URL, got %q", p.Endpoint)
	}

	// Build query parameters
	q := u.Query()
	q.Set("response_type", "code") // Authorization code flow
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("scope", p.Scope)
	q.Set("state", p.State)
	q.Set("code_challenge", p.CodeChallenge)
	q.Set("code_challenge_method", "S256")

	u.RawQuery = q.Encode()

	return u.String(), nil
}
