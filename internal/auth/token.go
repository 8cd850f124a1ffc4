// This file handles the token endpoint calls: swapping authorization codes
// for tokens with PKCE, and renewing access tokens from refresh tokens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// TokenResponse represents the provider's token endpoint response for both
// the authorization_code and refresh_token grants. Expiries are relative
// seconds; absolute timestamps are computed by the session layer.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type,omitempty"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"`
}

// tokenRequest is the JSON body sent to the token endpoint.
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	Code         string `json:"code,omitempty"`
	CodeVerifier string `json:"code_verifier,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenClient talks to the identity provider's token endpoint.
type TokenClient struct {
	Endpoint   string
	ClientID   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// ExchangeCode swaps an authorization code for tokens using PKCE.
// The redirect URI must be byte-identical to the one sent at login start;
// provider-side PKCE validation requires this symmetry.
func (c *TokenClient) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}
	if codeVerifier == "" {
		return nil, errors.New("code verifier is required")
	}
	if redirectURI == "" {
		return nil, errors.New("redirect URI is required")
	}

	return c.post(ctx, tokenRequest{
		GrantType:    "authorization_code",
		ClientID:     c.ClientID,
		Code:         code,
		CodeVerifier: codeVerifier,
		RedirectURI:  redirectURI,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	return c.post(ctx, tokenRequest{
		GrantType:    "refresh_token",
		ClientID:     c.ClientID,
		RefreshToken: refreshToken,
	})
}

func (c *TokenClient) post(ctx context.Context, req tokenRequest) (*TokenResponse, error) {
	resp, err := PostJSON[TokenResponse](ctx, c.HTTPClient, c.Endpoint, req, c.Timeout)
	if err != nil {
		return nil, err
	}

	// A 2xx without an access token is still a failed grant.
	if resp.AccessToken == "" {
		return nil, errors.New("invalid token response: missing access_token")
	}

	return &resp, nil
}
