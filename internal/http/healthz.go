package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wildermade/storefront-session-helper/internal/config"
)

// HealthStatus represents the overall health status of the service.
type HealthStatus struct {
	Status string            `json:"status"`           // "ok" or "degraded"
	Checks map[string]string `json:"checks,omitempty"` // Only included in deep health checks
}

// healthzHandler handles basic health check requests.
// Returns 200 OK with {"status": "ok"} for basic liveness checks.
// Supports ?check=deep for dependency validation (provider reachability,
// config validity).
func healthzHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("check") == "deep" {
			deepHealthCheck(w, cfg)
			return
		}

		// Basic health check - just return OK
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// deepHealthCheck validates configuration and provider reachability.
// Returns 200 if all checks pass, 503 if any critical check fails.
// Skips identity checks entirely when the feature flag is off.
func deepHealthCheck(w http.ResponseWriter, cfg config.Config) {
	checks := make(map[string]string)
	allHealthy := true

	if err := cfg.Validate(); err != nil {
		checks["config"] = fmt.Sprintf("invalid: %v", err)
		allHealthy = false
		log.Warn().Err(err).Msg("health check failed: config validation")
	} else {
		checks["config"] = "ok"
	}

	if cfg.CustomerAccountsEnabled {
		if err := checkProviderReachability(cfg.TokenURL); err != nil {
			checks["provider"] = fmt.Sprintf("unreachable: %v", err)
			allHealthy = false
			log.Warn().Err(err).Msg("health check failed: provider reachability")
		} else {
			checks["provider"] = "ok"
		}
	} else {
		checks["provider"] = "disabled"
	}

	status := HealthStatus{Status: "ok", Checks: checks}
	if !allHealthy {
		status.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// checkProviderReachability verifies the token endpoint host answers HTTP at
// all. Any response counts: token endpoints commonly reject HEAD, and this
// check cares about reachability, not grant semantics.
func checkProviderReachability(tokenURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, tokenURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return nil
}
