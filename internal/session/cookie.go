// This file implements the cookie codec: one long-lived session cookie plus
// three short-lived, single-use handshake cookies.
//
// # Cookie Format
//
// The session cookie value is base64url(JSON) with no padding. It is opaque
// to the browser but not encrypted; the bearer token inside is already a
// secret the client legitimately holds. Integrity of the OAuth handshake is
// protected separately by the HMAC-signed state parameter.
//
// # Single-Use Handshake Cookies
//
// The code verifier, state signature, and return path are consumed
// read-then-delete: the consuming call expires the cookie on the response
// AND strips it from the request header, so a replayed callback (or a second
// consume within the same request) finds nothing.
package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Cookie names are a wire contract shared with the storefront frontend;
// treat them as fixed.
const (
	SessionCookieName      = "shopify.customer_session"
	ReturnToCookieName     = "shopify.return_to"
	CodeVerifierCookieName = "shopify.code_verifier"
	OAuthStateCookieName   = "shopify.oauth_state"
)

// HandshakeTTLSeconds is the default lifetime of the three handshake
// cookies, used when the codec is not given an explicit TTL.
const HandshakeTTLSeconds = 300

// Codec encodes and decodes the customer auth cookies. Every cookie it sets
// is HttpOnly, SameSite=Lax, Path=/, and Secure in production. This is a
// fixed policy, not configurable per call.
type Codec struct {
	// Secure mirrors the deployment environment (true in prod).
	Secure bool

	// HandshakeTTL is the handshake cookie lifetime in seconds. Zero
	// means HandshakeTTLSeconds.
	HandshakeTTL int
}

func (c Codec) handshakeTTL() int {
	if c.HandshakeTTL > 0 {
		return c.HandshakeTTL
	}
	return HandshakeTTLSeconds
}

// SetSession serializes the session into the session cookie with the given
// max age in seconds.
func (c Codec) SetSession(w http.ResponseWriter, s CustomerSession, maxAgeSeconds int) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	c.set(w, SessionCookieName, base64.RawURLEncoding.EncodeToString(payload), maxAgeSeconds)
	return nil
}

// GetSession decodes the session cookie. Returns nil, never an error, on a
// missing cookie, malformed base64, malformed JSON, or an empty token:
// tampered or stale content is indistinguishable from "no session".
func (c Codec) GetSession(r *http.Request) *CustomerSession {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var s CustomerSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if s.Token == "" {
		return nil
	}

	return &s
}

// ClearSession deletes the session cookie.
func (c Codec) ClearSession(w http.ResponseWriter) {
	c.expire(w, SessionCookieName)
}

// ClearAuthCookies deletes the session cookie and all three handshake
// cookies in one call against an explicit response writer. Used by the
// post-logout path.
func (c Codec) ClearAuthCookies(w http.ResponseWriter) {
	c.expire(w, SessionCookieName)
	c.expire(w, ReturnToCookieName)
	c.expire(w, CodeVerifierCookieName)
	c.expire(w, OAuthStateCookieName)
}

// SetReturnTo stores the post-login return path.
func (c Codec) SetReturnTo(w http.ResponseWriter, path string) {
	c.set(w, ReturnToCookieName, base64.RawURLEncoding.EncodeToString([]byte(path)), c.handshakeTTL())
}

// ConsumeReturnTo reads and deletes the return path cookie. Returns "" when
// absent or unreadable.
func (c Codec) ConsumeReturnTo(w http.ResponseWriter, r *http.Request) string {
	raw := c.consume(w, r, ReturnToCookieName)
	if raw == "" {
		return ""
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// SetCodeVerifier stores the PKCE verifier for the pending handshake.
func (c Codec) SetCodeVerifier(w http.ResponseWriter, verifier string) {
	c.set(w, CodeVerifierCookieName, verifier, c.handshakeTTL())
}

// ConsumeCodeVerifier reads and deletes the PKCE verifier cookie.
func (c Codec) ConsumeCodeVerifier(w http.ResponseWriter, r *http.Request) string {
	return c.consume(w, r, CodeVerifierCookieName)
}

// SetOAuthState stores the HMAC signature of the state sent to the provider.
func (c Codec) SetOAuthState(w http.ResponseWriter, signature string) {
	c.set(w, OAuthStateCookieName, signature, c.handshakeTTL())
}

// ConsumeOAuthState reads and deletes the state signature cookie.
func (c Codec) ConsumeOAuthState(w http.ResponseWriter, r *http.Request) string {
	return c.consume(w, r, OAuthStateCookieName)
}

// set writes a cookie with the fixed flag policy.
func (c Codec) set(w http.ResponseWriter, name, value string, maxAgeSeconds int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
		MaxAge:   maxAgeSeconds,
	})
}

// expire writes an immediately-expired cookie to delete it from the browser.
func (c Codec) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
		MaxAge:   -1,
	})
}

// consume reads a cookie value, expires it on the response, and removes it
// from the request header so a later consume in the same request misses.
func (c Codec) consume(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}

	c.expire(w, name)
	stripRequestCookie(r, name)

	return cookie.Value
}

// stripRequestCookie rewrites the request's Cookie header without the named
// cookie.
func stripRequestCookie(r *http.Request, name string) {
	remaining := make([]*http.Cookie, 0)
	for _, cookie := range r.Cookies() {
		if cookie.Name != name {
			remaining = append(remaining, cookie)
		}
	}

	r.Header.Del("Cookie")
	for _, cookie := range remaining {
		r.AddCookie(cookie)
	}
}
