// Package session holds the customer identity session: a cookie-encoded
// token bundle with refresh-on-read semantics and no server-side store.
package session

import (
	"time"

	"github.com/wildermade/storefront-session-helper/internal/auth"
)

// RefreshWindow is how close to expiry an access token may get before the
// resolver must attempt a refresh instead of handing it out.
const RefreshWindow = 60 * time.Second

// MinCookieMaxAge floors the session cookie lifetime so a tiny or missing
// expires_in from the provider cannot produce an instantly-dying cookie.
const MinCookieMaxAge = 60

// CustomerSession is the only persisted entity, held entirely in a cookie.
// Timestamps are absolute epoch milliseconds; zero means absent.
type CustomerSession struct {
	Token            string `json:"token"`
	ExpiresAt        int64  `json:"expiresAt,omitempty"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	RefreshExpiresAt int64  `json:"refreshExpiresAt,omitempty"`
}

// Valid reports whether the session is usable at all.
func (s *CustomerSession) Valid() bool {
	return s != nil && s.Token != ""
}

// NearExpiry reports whether the access token expires within RefreshWindow
// of now. A session without an expiry never reports near-expiry; absent
// expiry means the token is treated as non-expiring and is never refreshed.
func (s *CustomerSession) NearExpiry(now time.Time) bool {
	if s == nil || s.ExpiresAt == 0 {
		return false
	}
	return time.UnixMilli(s.ExpiresAt).Sub(now) < RefreshWindow
}

// FromTokenResponse builds a session from a token endpoint response,
// converting the relative expires_in values to absolute timestamps. When
// the response omits a refresh token, the previous session's refresh
// credential is carried forward (providers commonly keep it reusable).
func FromTokenResponse(resp *auth.TokenResponse, prev *CustomerSession, now time.Time) CustomerSession {
	s := CustomerSession{
		Token:        resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}

	if resp.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second).UnixMilli()
	}
	if resp.RefreshTokenExpiresIn > 0 {
		s.RefreshExpiresAt = now.Add(time.Duration(resp.RefreshTokenExpiresIn) * time.Second).UnixMilli()
	}

	if s.RefreshToken == "" && prev != nil {
		s.RefreshToken = prev.RefreshToken
		if s.RefreshExpiresAt == 0 {
			s.RefreshExpiresAt = prev.RefreshExpiresAt
		}
	}

	return s
}

// CookieMaxAge returns the session cookie lifetime in seconds for a given
// expires_in: max(MinCookieMaxAge, expiresIn).
func CookieMaxAge(expiresIn int64) int {
	if expiresIn < MinCookieMaxAge {
		return MinCookieMaxAge
	}
	return int(expiresIn)
}
