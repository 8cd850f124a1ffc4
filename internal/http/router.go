package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/auth"
	"github.com/wildermade/storefront-session-helper/internal/config"
	"github.com/wildermade/storefront-session-helper/internal/session"
)

// timeNow is injectable for tests.
var timeNow = time.Now

// NewRouter wires the identity flow onto a chi router. Construction fails
// only on deployment defects (enabled feature with no signing secret);
// runtime identity failures never escape the handlers.
func NewRouter(cfg config.Config) (http.Handler, error) {
	codec := session.Codec{
		Secure:       cfg.CookieSecure(),
		HandshakeTTL: int(cfg.HandshakeTTL.Seconds()),
	}

	var signer *auth.StateSigner
	if cfg.CustomerAccountsEnabled {
		var err error
		signer, err = auth.NewStateSigner(cfg.StateSigningSecret)
		if err != nil {
			return nil, fmt.Errorf("building state signer: %w", err)
		}
	}

	tokens := &auth.TokenClient{
		Endpoint: cfg.TokenURL,
		ClientID: cfg.ClientID,
		Timeout:  cfg.TokenTimeout,
	}

	resolver := &session.Resolver{
		Enabled: cfg.CustomerAccountsEnabled,
		Codec:   codec,
		Tokens:  tokens,
		Now:     timeNow,
	}

	r := chi.NewRouter()

	// Add middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// Routes
	r.Get(RouteHealth, healthzHandler(cfg))
	r.Get(RouteMetrics, metricsHandler(cfg))

	r.Get(RouteLogin, loginHandler(cfg, codec, signer))
	r.Get(RouteCallback, callbackHandler(cfg, codec, signer, tokens))
	r.Post(RouteLogout, logoutHandler(cfg, codec))
	r.Get(RoutePostLogout, postLogoutHandler(cfg, codec))
	r.Post(RoutePostLogout, postLogoutHandler(cfg, codec))

	r.Get(RouteSession, sessionHandler(resolver))

	return r, nil
}

// requestLogger emits one structured event per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
