package httpx

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/auth"
	"github.com/wildermade/storefront-session-helper/internal/config"
	"github.com/wildermade/storefront-session-helper/internal/session"
)

// loginHandler starts the OAuth2 Authorization-Code-with-PKCE flow.
// It persists the PKCE verifier, the state signature, and the return path
// as single-use handshake cookies, then redirects to the provider.
func loginHandler(cfg config.Config, codec session.Codec, signer *auth.StateSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.CustomerAccountsEnabled {
			redirectHome(w, r)
			return
		}

		metrics.LoginStart.Add(1)

		returnTo := sanitizeReturnTo(r.URL.Query().Get("returnTo"))

		verifier, err := auth.NewCodeVerifier(auth.MinVerifierBytes)
		if err != nil {
			log.Error().Err(err).Msg("failed to generate PKCE verifier")
			redirectError(w, r, ErrorTagAuth)
			return
		}

		state, err := signer.Generate()
		if err != nil {
			log.Error().Err(err).Msg("failed to generate OAuth state")
			redirectError(w, r, ErrorTagAuth)
			return
		}

		authorizeURL, err := auth.BuildAuthorizeURL(auth.AuthorizeParams{
			Endpoint:      cfg.AuthorizationURL,
			ClientID:      cfg.ClientID,
			RedirectURI:   redirectURI(cfg, r),
			Scope:         cfg.Scopes,
			State:         state.Value,
			CodeChallenge: auth.ChallengeS256(verifier),
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to build authorization URL")
			redirectError(w, r, ErrorTagAuth)
			return
		}

		codec.SetCodeVerifier(w, verifier)
		codec.SetOAuthState(w, state.Signature)
		codec.SetReturnTo(w, returnTo)

		log.Debug().Str("return_to", returnTo).Msg("login initiated")
		metrics.LoginOK.Add(1)

		noStore(w)
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}
