package httpx

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/config"
	"github.com/wildermade/storefront-session-helper/internal/session"
)

// logoutHandler clears the local session cookie and redirects to the
// logged-out marker. It does not invalidate the token at the provider;
// provider-side logout lands on the post-logout handler.
func logoutHandler(cfg config.Config, codec session.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.CustomerAccountsEnabled {
			redirectHome(w, r)
			return
		}

		codec.ClearSession(w)
		metrics.Logout.Add(1)
		log.Info().Msg("customer logged out")

		noStore(w)
		http.Redirect(w, r, LoggedOutPath, http.StatusFound)
	}
}

// postLogoutHandler is the provider-initiated callback after its own logout.
// It scrubs every auth cookie on the outgoing response, including handshake
// cookies from an abandoned login. Accepts both GET and POST; POST answers 303 so the
// browser re-requests the marker URL with GET.
func postLogoutHandler(cfg config.Config, codec session.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.CustomerAccountsEnabled {
			redirectHome(w, r)
			return
		}

		codec.ClearAuthCookies(w)

		status := http.StatusFound
		if r.Method == http.MethodPost {
			status = http.StatusSeeOther
		}

		noStore(w)
		http.Redirect(w, r, LoggedOutPath, status)
	}
}
