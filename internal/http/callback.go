package httpx

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/auth"
	"github.com/wildermade/storefront-session-helper/internal/config"
	"github.com/wildermade/storefront-session-helper/internal/session"
)

// callbackHandler completes the OAuth2 flow: it validates the round-tripped
// state against the stored signature, exchanges the code for tokens, and
// persists the customer session. Every failure degrades to an error-tagged
// redirect; nothing here surfaces as a 5xx.
func callbackHandler(cfg config.Config, codec session.Codec, signer *auth.StateSigner, tokens *auth.TokenClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.CustomerAccountsEnabled {
			redirectHome(w, r)
			return
		}

		metrics.CbStart.Add(1)

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		// The handshake cookies are single-use: consume all three up
		// front so a replayed callback finds nothing, regardless of
		// which branch this request takes.
		verifier := codec.ConsumeCodeVerifier(w, r)
		stateSig := codec.ConsumeOAuthState(w, r)
		returnTo := codec.ConsumeReturnTo(w, r)
		if returnTo == "" {
			returnTo = AccountPath
		}
		returnTo = sanitizeReturnTo(returnTo)

		if code == "" || state == "" || stateSig == "" || verifier == "" {
			log.Warn().
				Bool("code_present", code != "").
				Bool("state_present", state != "").
				Bool("signature_present", stateSig != "").
				Bool("verifier_present", verifier != "").
				Msg("callback missing handshake material")
			metrics.CbHandshakeBad.Add(1)
			redirectError(w, r, ErrorTagAuth)
			return
		}

		if !signer.Verify(state, stateSig) {
			log.Warn().Msg("callback state signature mismatch")
			metrics.CbHandshakeBad.Add(1)
			redirectError(w, r, ErrorTagAuth)
			return
		}

		// The redirect URI must be byte-identical to the one sent at
		// login start.
		resp, err := tokens.ExchangeCode(r.Context(), code, verifier, redirectURI(cfg, r))
		if err != nil {
			log.Warn().Err(err).Msg("code exchange failed")
			metrics.CbExchangeFail.Add(1)
			// A failed exchange must not leave an earlier session behind.
			codec.ClearSession(w)
			redirectError(w, r, ErrorTagToken)
			return
		}

		sess := session.FromTokenResponse(resp, nil, timeNow())
		if err := codec.SetSession(w, sess, session.CookieMaxAge(resp.ExpiresIn)); err != nil {
			log.Error().Err(err).Msg("failed to persist customer session")
			metrics.CbExchangeFail.Add(1)
			codec.ClearSession(w)
			redirectError(w, r, ErrorTagToken)
			return
		}

		log.Info().Str("return_to", returnTo).Msg("customer session established")
		metrics.CbOK.Add(1)

		noStore(w)
		http.Redirect(w, r, returnTo, http.StatusFound)
	}
}
