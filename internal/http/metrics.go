package httpx

import (
	"net/http"
	"sync/atomic"

	"github.com/wildermade/storefront-session-helper/internal/config"
)

// Metrics holds atomic counters for monitoring the identity flow.
// Lightweight in-memory counters that give visibility without heavy dependencies.
type Metrics struct {
	// Login flow counters
	LoginStart atomic.Uint64 // Login endpoint invoked
	LoginOK    atomic.Uint64 // Redirect to provider issued

	// Callback flow counters
	CbStart        atomic.Uint64 // Callback endpoint invoked
	CbHandshakeBad atomic.Uint64 // Missing/mismatched state, verifier, or code
	CbExchangeFail atomic.Uint64 // Token exchange with provider failed
	CbOK           atomic.Uint64 // Session established

	// Session counters
	SessionHit  atomic.Uint64 // Resolver produced a valid token
	SessionMiss atomic.Uint64 // Resolver reported anonymous
	Logout      atomic.Uint64 // Logout performed
}

// Global metrics instance
var metrics = &Metrics{}

// MetricsSnapshot represents a point-in-time view of all counters.
type MetricsSnapshot struct {
	Login    LoginMetrics    `json:"login"`
	Callback CallbackMetrics `json:"callback"`
	Session  SessionMetrics  `json:"session"`
}

// LoginMetrics groups login-related counters.
type LoginMetrics struct {
	Start uint64 `json:"start"`
	OK    uint64 `json:"ok"`
}

// CallbackMetrics groups callback-related counters.
type CallbackMetrics struct {
	Start        uint64 `json:"start"`
	HandshakeBad uint64 `json:"handshake_bad"`
	ExchangeFail uint64 `json:"exchange_fail"`
	OK           uint64 `json:"ok"`
}

// SessionMetrics groups resolver and logout counters.
type SessionMetrics struct {
	Hit    uint64 `json:"hit"`
	Miss   uint64 `json:"miss"`
	Logout uint64 `json:"logout"`
}

// Snapshot returns a consistent view of all counters at this moment.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Login: LoginMetrics{
			Start: m.LoginStart.Load(),
			OK:    m.LoginOK.Load(),
		},
		Callback: CallbackMetrics{
			Start:        m.CbStart.Load(),
			HandshakeBad: m.CbHandshakeBad.Load(),
			ExchangeFail: m.CbExchangeFail.Load(),
			OK:           m.CbOK.Load(),
		},
		Session: SessionMetrics{
			Hit:    m.SessionHit.Load(),
			Miss:   m.SessionMiss.Load(),
			Logout: m.Logout.Load(),
		},
	}
}

// metricsHandler serves counters in JSON format (dev/staging only).
func metricsHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Env == "prod" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
