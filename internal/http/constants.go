// Package httpx provides the HTTP surface of the customer identity flow.
package httpx

// HTTP Routes
const (
	// RouteLogin initiates the OAuth2 Authorization-Code-with-PKCE flow
	RouteLogin = "/login"
	// RouteCallback completes the flow when the provider redirects back
	RouteCallback = "/callback"
	// RouteLogout clears the local session
	RouteLogout = "/logout"
	// RoutePostLogout is the provider-initiated callback after IdP logout
	RoutePostLogout = "/post-logout"
	// RouteSession reports whether the visitor is signed in
	RouteSession = "/session"
	// RouteHealth is the endpoint for health checks
	RouteHealth = "/healthz"
	// RouteMetrics exposes flow counters (non-prod only)
	RouteMetrics = "/metrics"
)

// Redirect targets
const (
	// HomePath is where disabled-feature requests land
	HomePath = "/"
	// AccountPath is the default post-login destination and the base for
	// error-tagged redirects
	AccountPath = "/account"
	// LoggedOutPath marks a completed logout for the frontend
	LoggedOutPath = "/?loggedOut=1"
)

// Error tags appended to AccountPath on failure (?error=<tag>)
const (
	// ErrorTagAuth marks a handshake integrity failure: missing or
	// mismatched state, missing verifier or code
	ErrorTagAuth = "auth"
	// ErrorTagToken marks a failed code exchange
	ErrorTagToken = "token"
)

// HTTP Headers
const (
	// HeaderContentType is the Content-Type header name
	HeaderContentType = "Content-Type"
	// HeaderForwardedHost carries the original host behind a proxy
	HeaderForwardedHost = "X-Forwarded-Host"
	// HeaderForwardedProto carries the original scheme behind a proxy
	HeaderForwardedProto = "X-Forwarded-Proto"
)

// Content Types
const (
	// ContentTypeJSON is the MIME type for JSON responses with UTF-8 charset
	ContentTypeJSON = "application/json; charset=utf-8"
)
