package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// noStore sets cache control headers to prevent page caching.
// Auth redirects must never be replayed out of the browser cache.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Header().Set("Pragma", "no-cache")
}

// writeJSON writes a JSON response with the proper content type and status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// redirectHome sends the visitor to the home page. Used whenever the
// customer accounts feature is disabled.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	http.Redirect(w, r, HomePath, http.StatusFound)
}

// redirectError sends the visitor to the account page with an error tag.
// Identity failures degrade to a redirect, never to a 5xx: every page calls
// the resolver on the happy path and must keep rendering.
func redirectError(w http.ResponseWriter, r *http.Request, tag string) {
	noStore(w)
	http.Redirect(w, r, AccountPath+"?error="+tag, http.StatusFound)
}

// sanitizeReturnTo restricts a return path to a local, absolute path.
// Anything that could leave the site (absolute URLs, protocol-relative
// paths, header injection) falls back to the account page.
func sanitizeReturnTo(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		return AccountPath
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return AccountPath
	}
	if strings.ContainsAny(path, "\r\n") {
		return AccountPath
	}
	return path
}
