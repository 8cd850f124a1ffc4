package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Environment: dev, staging, or prod (default: dev)
	Env string

	// Server port (default: 8080)
	Port string

	// CustomerAccountsEnabled is the deployment-level feature flag for the
	// whole customer identity subsystem. When false, every flow endpoint
	// redirects home and the session resolver reports anonymous without
	// ever touching cookies.
	CustomerAccountsEnabled bool

	// StateSigningSecret keys the HMAC over the OAuth state parameter.
	// Decoded from hex or base64; required whenever the feature is enabled.
	StateSigningSecret []byte

	// Identity provider settings
	ClientID         string
	AuthorizationURL string
	TokenURL         string

	// Scopes requested at login (default: "openid email customer-account-api:full")
	Scopes string

	// Fallback redirect URIs, one per deployment environment. Used only
	// when no request context is available to derive the effective origin.
	RedirectURIProd string
	RedirectURIDev  string

	// Trusted hosts for X-Forwarded-Host; forwarded headers are ignored
	// unless the forwarded host matches one of these patterns.
	TrustedForwardHosts []string

	// Preprocessed trusted hosts for fast wildcard matching
	TrustedForwardHostsPreprocessed []ProcessedHost

	// Token endpoint timeout (default: 10s)
	TokenTimeout time.Duration

	// Handshake cookie TTL - verifier/state/return-to lifetime (default: 300s)
	HandshakeTTL time.Duration

	// Log level: info, debug, warn, error (default: info)
	LogLevel string
}

// ProcessedHost represents a processed host pattern for fast matching
type ProcessedHost struct {
	// Original pattern as provided by user (e.g., "*.example.com")
	Original string
	// Canonical pattern for fast matching (e.g., "example.com" for "*.example.com")
	Canonical string
	// IsWildcard indicates if this is a wildcard pattern
	IsWildcard bool
}

// FromEnv reads configuration from environment variables
func FromEnv() (Config, error) {
	cfg := Config{}

	cfg.Env = getEnv("ENV", "dev")
	cfg.Port = getEnv("PORT", "8080")

	cfg.CustomerAccountsEnabled = parseBool("CUSTOMER_ACCOUNTS_ENABLED", false)

	// Parse state signing secret from hex or base64
	if secret := getEnv("STATE_SIGNING_SECRET", ""); secret != "" {
		var err error
		cfg.StateSigningSecret, err = decodeKey(secret)
		if err != nil {
			return cfg, fmt.Errorf("invalid STATE_SIGNING_SECRET: %w", err)
		}
	}

	// Identity provider settings
	cfg.ClientID = getEnv("CUSTOMER_CLIENT_ID", "")
	cfg.AuthorizationURL = getEnv("CUSTOMER_AUTHORIZATION_URL", "")
	cfg.TokenURL = getEnv("CUSTOMER_TOKEN_URL", "")
	cfg.Scopes = getEnv("CUSTOMER_SCOPES", "openid email customer-account-api:full")

	// Fallback redirect URIs
	cfg.RedirectURIProd = getEnv("REDIRECT_URI_PROD", "")
	cfg.RedirectURIDev = getEnv("REDIRECT_URI_DEV", "")

	// Parse trusted forwarded hosts from CSV with normalization
	trustedHosts := parseCSV("TRUSTED_FORWARD_HOSTS")
	cfg.TrustedForwardHosts, cfg.TrustedForwardHostsPreprocessed = normalizeTrustedHosts(trustedHosts)

	// Parse durations with defaults
	var err error
	cfg.TokenTimeout, err = parseDuration("TOKEN_TIMEOUT", "10s")
	if err != nil {
		return cfg, err
	}

	cfg.HandshakeTTL, err = parseDuration("HANDSHAKE_TTL", "300s")
	if err != nil {
		return cfg, err
	}

	// Log level
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	return cfg, nil
}

// Validate checks that required fields are set and enforces identity
// constraints. Operating with the customer accounts feature enabled but an
// unset signing secret is a deployment defect, so it fails here rather than
// at first use.
func (c *Config) Validate() error {
	// Validate PORT format and range
	if c.Port == "" {
		return fmt.Errorf("PORT is required (set to a port number 1-65535, e.g., 8080)")
	}
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be a valid number 1-65535 (got %q)", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be 1-65535 (got %q)", c.Port)
	}

	// Validate environment value
	switch c.Env {
	case "dev", "staging", "prod":
		// valid
	default:
		return fmt.Errorf("ENV must be 'dev', 'staging', or 'prod' (got %q)", c.Env)
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("LOG_LEVEL must be 'debug', 'info', 'warn', or 'error' (got %q)", c.LogLevel)
	}

	if c.TokenTimeout <= 0 {
		return fmt.Errorf("TOKEN_TIMEOUT must be positive (got %v)", c.TokenTimeout)
	}
	if c.HandshakeTTL <= 0 {
		return fmt.Errorf("HANDSHAKE_TTL must be positive (got %v)", c.HandshakeTTL)
	}

	// With the feature disabled, only server basics are required.
	if !c.CustomerAccountsEnabled {
		return nil
	}

	if len(c.StateSigningSecret) == 0 {
		return fmt.Errorf("STATE_SIGNING_SECRET is required when customer accounts are enabled (generate a 32+ byte hex string)")
	}
	if len(c.StateSigningSecret) < 32 {
		return fmt.Errorf("STATE_SIGNING_SECRET must be at least 32 bytes for security (got %d bytes, need 32+)", len(c.StateSigningSecret))
	}

	if c.ClientID == "" {
		return fmt.Errorf("CUSTOMER_CLIENT_ID is required when customer accounts are enabled (get from your provider's app settings)")
	}

	if err := validateEndpointURL("CUSTOMER_AUTHORIZATION_URL", c.AuthorizationURL); err != nil {
		return err
	}
	if err := validateEndpointURL("CUSTOMER_TOKEN_URL", c.TokenURL); err != nil {
		return err
	}

	if c.Scopes == "" {
		return fmt.Errorf("CUSTOMER_SCOPES is required when customer accounts are enabled (e.g., 'openid email')")
	}

	if c.FallbackRedirectURI() == "" {
		return fmt.Errorf("a fallback redirect URI is required when customer accounts are enabled (set REDIRECT_URI_PROD or REDIRECT_URI_DEV)")
	}

	return nil
}

// FallbackRedirectURI returns the configured redirect URI for the current
// deployment environment. Used only when the effective origin cannot be
// derived from an inbound request.
func (c Config) FallbackRedirectURI() string {
	if c.Env == "prod" {
		return c.RedirectURIProd
	}
	if c.RedirectURIDev != "" {
		return c.RedirectURIDev
	}
	return c.RedirectURIProd
}

// CookieSecure reports whether cookies must carry the Secure flag.
func (c Config) CookieSecure() bool {
	return c.Env == "prod"
}

// IsTrustedForwardHost checks a host against the trusted forwarded-host
// patterns, including wildcard subdomains.
func (c Config) IsTrustedForwardHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	// Strip a port if present. SplitHostPort handles bracketed IPv6
	// literals and leaves a bare IPv6 address alone.
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		h = hostOnly
	}

	for _, p := range c.TrustedForwardHostsPreprocessed {
		if p.IsWildcard {
			if h == p.Canonical || strings.HasSuffix(h, "."+p.Canonical) {
				return true
			}
		} else if h == p.Canonical {
			return true
		}
	}
	return false
}

// Helper functions

// getEnv returns the value of an environment variable or a default value
func getEnv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// parseCSV splits a CSV environment variable into a slice
// It trims spaces, converts to lowercase, deduplicates, and drops empty values
func parseCSV(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, p := range parts {
		trimmed := strings.TrimSpace(strings.ToLower(p))
		if trimmed != "" && !seen[trimmed] {
			seen[trimmed] = true
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDuration parses a duration environment variable with a default
func parseDuration(key, def string) (time.Duration, error) {
	value := getEnv(key, def)
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return dur, nil
}

// parseBool parses a boolean environment variable with a default
func parseBool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

// decodeKey decodes a key from hex or base64 encoding
func decodeKey(key string) ([]byte, error) {
	// Try hex first (most common for keys)
	if decoded, err := hex.DecodeString(key); err == nil {
		return decoded, nil
	}

	// Try standard base64
	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil {
		return decoded, nil
	}

	// Try base64 URL encoding (no padding)
	if decoded, err := base64.RawURLEncoding.DecodeString(key); err == nil {
		return decoded, nil
	}

	return nil, fmt.Errorf("key must be valid hex or base64 encoding")
}

// validateEndpointURL checks that a provider endpoint is an absolute http(s) URL
func validateEndpointURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required when customer accounts are enabled", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%s must be an absolute http(s) URL (got %q)", name, value)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host (got %q)", name, value)
	}
	return nil
}

// normalizeTrustedHosts processes the trusted forwarded-host list
func normalizeTrustedHosts(hosts []string) ([]string, []ProcessedHost) {
	normalized := make([]string, len(hosts))
	processed := make([]ProcessedHost, len(hosts))

	for i, host := range hosts {
		// Normalize to lowercase and trim
		normalizedHost := strings.ToLower(strings.TrimSpace(host))
		normalized[i] = normalizedHost

		// Process for fast matching
		if strings.HasPrefix(normalizedHost, "*.") {
			// Wildcard pattern - strip the "*." prefix for canonical form
			canonical := normalizedHost[2:]
			processed[i] = ProcessedHost{
				Original:   normalizedHost,
				Canonical:  canonical,
				IsWildcard: true,
			}
		} else {
			// Exact host match
			processed[i] = ProcessedHost{
				Original:   normalizedHost,
				Canonical:  normalizedHost,
				IsWildcard: false,
			}
		}
	}

	return normalized, processed
}
