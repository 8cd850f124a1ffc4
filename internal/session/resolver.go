// This file implements the session resolver: the single question every page
// asks is "is this visitor signed in", answered with a currently valid
// access token or a sentinel error. Refresh happens transparently on read;
// any refresh failure closes the session so identity checks fail closed.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/auth"
)

// Sentinel errors returned by the resolver. Callers treat every one of them
// as "render anonymous"; the distinctions exist for logging and tests.
var (
	// ErrDisabled means the customer accounts feature flag is off.
	ErrDisabled = errors.New("customer accounts disabled")

	// ErrNoSession means there is no usable session: cookie absent,
	// undecodable, empty token, or expiring with no refresh credential.
	ErrNoSession = errors.New("no customer session")

	// ErrRefreshFailed means a refresh was attempted and failed; the
	// session has been cleared.
	ErrRefreshFailed = errors.New("session refresh failed")
)

// Resolver turns request cookies into a valid access token, refreshing near
// expiry and clearing the session on failure.
type Resolver struct {
	// Enabled mirrors the deployment feature flag. When false the
	// resolver answers ErrDisabled without reading any cookie.
	Enabled bool

	Codec  Codec
	Tokens *auth.TokenClient

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// AccessToken returns a currently valid access token for the request, or a
// sentinel error. A token within RefreshWindow of expiry is refreshed first;
// on refresh failure the session cookie is cleared and the caller sees the
// same thing it would for a visitor who never signed in.
func (res *Resolver) AccessToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	if !res.Enabled {
		return "", ErrDisabled
	}

	sess := res.Codec.GetSession(r)
	if !sess.Valid() {
		return "", ErrNoSession
	}

	now := res.now()
	if !sess.NearExpiry(now) {
		return sess.Token, nil
	}

	refreshed, err := res.refresh(ctx, w, sess, now)
	if err != nil {
		return "", err
	}
	return refreshed.Token, nil
}

// refresh exchanges the session's refresh token for a new access token and
// persists the replacement session. Two concurrent requests may both land
// here for the same near-expiry session; each refreshes independently,
// which is acceptable duplicate work while the provider keeps refresh
// tokens reusable within a grace window.
func (res *Resolver) refresh(ctx context.Context, w http.ResponseWriter, sess *CustomerSession, now time.Time) (*CustomerSession, error) {
	if sess.RefreshToken == "" {
		// An expiring access token with no refresh credential is
		// unrecoverable.
		res.Codec.ClearSession(w)
		return nil, ErrNoSession
	}

	resp, err := res.Tokens.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("customer session refresh failed, clearing session")
		res.Codec.ClearSession(w)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	next := FromTokenResponse(resp, sess, now)
	if err := res.Codec.SetSession(w, next, CookieMaxAge(resp.ExpiresIn)); err != nil {
		log.Error().Err(err).Msg("failed to persist refreshed session")
		res.Codec.ClearSession(w)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	return &next, nil
}

func (res *Resolver) now() time.Time {
	if res.Now != nil {
		return res.Now()
	}
	return time.Now()
}
