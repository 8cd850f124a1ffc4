package httpx

import (
	"net/http"
	"strings"

	"github.com/wildermade/storefront-session-helper/internal/config"
)

// requestOrigin derives the effective origin of the request so the same
// codebase produces correct redirect URIs on every deployed domain. A
// forwarded host/proto pair is honored only when the forwarded host matches
// the trusted allowlist; otherwise the request's own host wins.
func requestOrigin(cfg config.Config, r *http.Request) string {
	host := r.Host
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	if fwdHost := r.Header.Get(HeaderForwardedHost); fwdHost != "" && cfg.IsTrustedForwardHost(fwdHost) {
		host = strings.TrimSpace(fwdHost)
		scheme = "https"
		if fwdProto := r.Header.Get(HeaderForwardedProto); fwdProto == "http" {
			scheme = "http"
		}
	}

	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

// redirectURI returns the callback URI to send to the provider. The same
// value must be produced at login start and at token exchange: provider-side
// PKCE validation requires the two to be byte-identical. Falls back to the
// configured per-environment URI only when no origin can be derived.
func redirectURI(cfg config.Config, r *http.Request) string {
	origin := requestOrigin(cfg, r)
	if origin == "" {
		return cfg.FallbackRedirectURI()
	}
	return origin + RouteCallback
}
