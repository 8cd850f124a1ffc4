package config

import (
	"fmt"
)

// Redacted returns a map suitable for logging/json with secrets replaced by "***"
func (c Config) Redacted() map[string]any {
	redacted := make(map[string]any)

	// Non-sensitive fields
	redacted["env"] = c.Env
	redacted["port"] = c.Port
	redacted["customer_accounts_enabled"] = c.CustomerAccountsEnabled
	redacted["customer_client_id"] = c.ClientID
	redacted["customer_authorization_url"] = c.AuthorizationURL
	redacted["customer_token_url"] = c.TokenURL
	redacted["customer_scopes"] = c.Scopes
	redacted["redirect_uri_prod"] = c.RedirectURIProd
	redacted["redirect_uri_dev"] = c.RedirectURIDev
	redacted["trusted_forward_hosts"] = c.TrustedForwardHosts
	redacted["token_timeout"] = c.TokenTimeout.String()
	redacted["handshake_ttl"] = c.HandshakeTTL.String()
	redacted["log_level"] = c.LogLevel

	// Redact sensitive fields
	if len(c.StateSigningSecret) > 0 {
		redacted["state_signing_secret"] = fmt.Sprintf("*** (%d bytes)", len(c.StateSigningSecret))
	}

	// Include processed hosts info for debugging
	if len(c.TrustedForwardHostsPreprocessed) > 0 {
		processed := make([]map[string]any, len(c.TrustedForwardHostsPreprocessed))
		for i, host := range c.TrustedForwardHostsPreprocessed {
			processed[i] = map[string]any{
				"original":    host.Original,
				"canonical":   host.Canonical,
				"is_wildcard": host.IsWildcard,
			}
		}
		redacted["trusted_forward_hosts_processed"] = processed
	}

	return redacted
}
