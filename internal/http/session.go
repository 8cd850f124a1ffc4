package httpx

import (
	"net/http"

	"github.com/wildermade/storefront-session-helper/internal/session"
)

// SessionStatus is the resolver's answer as seen by storefront pages.
type SessionStatus struct {
	Authenticated bool `json:"authenticated"`
}

// sessionHandler probes the customer session. This is the sole identity
// interface the rest of the storefront consumes: a valid token means signed
// in, any resolver error means anonymous. Always 200, never a 5xx.
func sessionHandler(resolver *session.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := resolver.AccessToken(r.Context(), w, r)
		authenticated := err == nil && token != ""

		if authenticated {
			metrics.SessionHit.Add(1)
		} else {
			metrics.SessionMiss.Add(1)
		}

		noStore(w)
		writeJSON(w, http.StatusOK, SessionStatus{Authenticated: authenticated})
	}
}
