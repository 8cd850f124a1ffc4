package config

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"
)

// clearIdentityEnv blanks every variable FromEnv reads so tests are
// hermetic regardless of the developer's shell.
func clearIdentityEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"ENV", "PORT", "CUSTOMER_ACCOUNTS_ENABLED", "STATE_SIGNING_SECRET",
		"CUSTOMER_CLIENT_ID", "CUSTOMER_AUTHORIZATION_URL", "CUSTOMER_TOKEN_URL",
		"CUSTOMER_SCOPES", "REDIRECT_URI_PROD", "REDIRECT_URI_DEV",
		"TRUSTED_FORWARD_HOSTS", "TOKEN_TIMEOUT", "HANDSHAKE_TTL", "LOG_LEVEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearIdentityEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CustomerAccountsEnabled {
		t.Errorf("CustomerAccountsEnabled should default to false")
	}
	if cfg.Scopes != "openid email customer-account-api:full" {
		t.Errorf("unexpected default scopes: %q", cfg.Scopes)
	}
	if cfg.TokenTimeout != 10*time.Second {
		t.Errorf("TokenTimeout = %v, want 10s", cfg.TokenTimeout)
	}
	if cfg.HandshakeTTL != 300*time.Second {
		t.Errorf("HandshakeTTL = %v, want 300s", cfg.HandshakeTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestFromEnvParsesValues(t *testing.T) {
	clearIdentityEnv(t)

	secret := strings.Repeat("ab", 32)
	t.Setenv("ENV", "prod")
	t.Setenv("CUSTOMER_ACCOUNTS_ENABLED", "true")
	t.Setenv("STATE_SIGNING_SECRET", secret)
	t.Setenv("CUSTOMER_CLIENT_ID", "client-123")
	t.Setenv("CUSTOMER_AUTHORIZATION_URL", "https://auth.example.com/oauth/authorize")
	t.Setenv("CUSTOMER_TOKEN_URL", "https://auth.example.com/oauth/token")
	t.Setenv("REDIRECT_URI_PROD", "https://shop.example.com/callback")
	t.Setenv("TRUSTED_FORWARD_HOSTS", "shop.example.com, *.Preview.Example.com")
	t.Setenv("TOKEN_TIMEOUT", "5s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSecret, _ := hex.DecodeString(secret)
	if string(cfg.StateSigningSecret) != string(wantSecret) {
		t.Errorf("secret not hex-decoded")
	}
	if cfg.TokenTimeout != 5*time.Second {
		t.Errorf("TokenTimeout = %v, want 5s", cfg.TokenTimeout)
	}
	if len(cfg.TrustedForwardHostsPreprocessed) != 2 {
		t.Fatalf("expected 2 processed hosts, got %d", len(cfg.TrustedForwardHostsPreprocessed))
	}
	if !cfg.TrustedForwardHostsPreprocessed[1].IsWildcard {
		t.Errorf("expected wildcard pattern for *.preview.example.com")
	}
	if cfg.TrustedForwardHostsPreprocessed[1].Canonical != "preview.example.com" {
		t.Errorf("wildcard canonical = %q", cfg.TrustedForwardHostsPreprocessed[1].Canonical)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("fully configured prod setup should validate, got: %v", err)
	}
}

func TestFromEnvRejectsBadSecret(t *testing.T) {
	clearIdentityEnv(t)
	t.Setenv("STATE_SIGNING_SECRET", "!!!not-a-key!!!")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for undecodable secret")
	}
}

func validEnabledConfig() Config {
	return Config{
		Env:                     "prod",
		Port:                    "8080",
		CustomerAccountsEnabled: true,
		StateSigningSecret:      []byte(strings.Repeat("k", 32)),
		ClientID:                "client-123",
		AuthorizationURL:        "https://auth.example.com/oauth/authorize",
		TokenURL:                "https://auth.example.com/oauth/token",
		Scopes:                  "openid email",
		RedirectURIProd:         "https://shop.example.com/callback",
		TokenTimeout:            10 * time.Second,
		HandshakeTTL:            300 * time.Second,
		LogLevel:                "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid enabled config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "disabled needs no identity settings",
			mutate: func(c *Config) {
				c.CustomerAccountsEnabled = false
				c.StateSigningSecret = nil
				c.ClientID = ""
				c.AuthorizationURL = ""
				c.TokenURL = ""
				c.RedirectURIProd = ""
			},
			expectError: false,
		},
		{
			name:        "missing secret when enabled",
			mutate:      func(c *Config) { c.StateSigningSecret = nil },
			expectError: true,
			errorMsg:    "STATE_SIGNING_SECRET is required",
		},
		{
			name:        "short secret",
			mutate:      func(c *Config) { c.StateSigningSecret = []byte("short") },
			expectError: true,
			errorMsg:    "at least 32 bytes",
		},
		{
			name:        "missing client id",
			mutate:      func(c *Config) { c.ClientID = "" },
			expectError: true,
			errorMsg:    "CUSTOMER_CLIENT_ID is required",
		},
		{
			name:        "missing authorization URL",
			mutate:      func(c *Config) { c.AuthorizationURL = "" },
			expectError: true,
			errorMsg:    "CUSTOMER_AUTHORIZATION_URL is required",
		},
		{
			name:        "relative token URL",
			mutate:      func(c *Config) { c.TokenURL = "/oauth/token" },
			expectError: true,
			errorMsg:    "CUSTOMER_TOKEN_URL must be an absolute",
		},
		{
			name:        "missing fallback redirect URI",
			mutate:      func(c *Config) { c.RedirectURIProd = "" },
			expectError: true,
			errorMsg:    "fallback redirect URI",
		},
		{
			name:        "bad env",
			mutate:      func(c *Config) { c.Env = "production" },
			expectError: true,
			errorMsg:    "ENV must be",
		},
		{
			name:        "bad port",
			mutate:      func(c *Config) { c.Port = "99999" },
			expectError: true,
			errorMsg:    "PORT must be",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			expectError: true,
			errorMsg:    "LOG_LEVEL must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validEnabledConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFallbackRedirectURI(t *testing.T) {
	cfg := Config{
		RedirectURIProd: "https://shop.example.com/callback",
		RedirectURIDev:  "http://localhost:8080/callback",
	}

	cfg.Env = "prod"
	if got := cfg.FallbackRedirectURI(); got != cfg.RedirectURIProd {
		t.Errorf("prod fallback = %q", got)
	}

	cfg.Env = "dev"
	if got := cfg.FallbackRedirectURI(); got != cfg.RedirectURIDev {
		t.Errorf("dev fallback = %q", got)
	}

	cfg.RedirectURIDev = ""
	if got := cfg.FallbackRedirectURI(); got != cfg.RedirectURIProd {
		t.Errorf("dev without dev URI should fall back to prod URI, got %q", got)
	}
}

func TestIsTrustedForwardHost(t *testing.T) {
	_, processed := normalizeTrustedHosts([]string{"shop.example.com", "*.preview.example.com", "::1"})
	cfg := Config{TrustedForwardHostsPreprocessed: processed}

	tests := []struct {
		host string
		want bool
	}{
		{"shop.example.com", true},
		{"SHOP.EXAMPLE.COM", true},
		{"shop.example.com:443", true},
		{"preview.example.com", true},
		{"pr-42.preview.example.com", true},
		{"evil.example", false},
		{"shop.example.com.evil.example", false},
		{"", false},
		{"::1", true},
		{"[::1]:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := cfg.IsTrustedForwardHost(tt.host); got != tt.want {
				t.Errorf("IsTrustedForwardHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestCookieSecure(t *testing.T) {
	if (Config{Env: "dev"}).CookieSecure() {
		t.Errorf("dev cookies must not be Secure")
	}
	if !(Config{Env: "prod"}).CookieSecure() {
		t.Errorf("prod cookies must be Secure")
	}
}

func TestRedacted(t *testing.T) {
	cfg := validEnabledConfig()
	redacted := cfg.Redacted()

	secret, ok := redacted["state_signing_secret"].(string)
	if !ok {
		t.Fatalf("expected redacted secret entry")
	}
	if strings.Contains(secret, "k") && !strings.Contains(secret, "***") {
		t.Errorf("secret leaked into redacted output: %q", secret)
	}
	if redacted["customer_client_id"] != "client-123" {
		t.Errorf("non-sensitive field missing from redacted output")
	}
}
