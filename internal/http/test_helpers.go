package httpx

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/wildermade/storefront-session-helper/internal/config"
)

// newTestConfig creates a valid test configuration with customer accounts
// enabled. Tests pointing at a stub provider overwrite TokenURL.
func newTestConfig() config.Config {
	return config.Config{
		Env:                     "dev",
		Port:                    "8080",
		CustomerAccountsEnabled: true,

		StateSigningSecret: []byte("test-signing-secret-32-bytes-ok!"),

		ClientID:         "test-client-id",
		AuthorizationURL: "https://auth.example.com/oauth/authorize",
		TokenURL:         "https://auth.example.com/oauth/token",
		Scopes:           "openid email customer-account-api:full",

		RedirectURIProd: "https://shop.example.com/callback",
		RedirectURIDev:  "http://localhost:8080/callback",

		TokenTimeout: time.Second,
		HandshakeTTL: 300 * time.Second,
		LogLevel:     "info",
	}
}

// withCookies copies live Set-Cookie output from a recorder onto a request,
// simulating the browser sending the cookies back on the next navigation.
func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return req
}

// lastCookie returns the last Set-Cookie entry with the given name, or nil.
func lastCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}
