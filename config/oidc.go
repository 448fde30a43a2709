package config

import (
	"strings"
	"time"
)

const (
	minHTTPTimeout = time.Second
	maxHTTPTimeout = 60 * time.Second
)

// OIDCConfig contains settings shared by every tenant provider.
type OIDCConfig struct {
	// CallbackBaseURL prefixes the redirect URI: {base}/oauth/callback/{tenant}/{provider}.
	CallbackBaseURL string `env:"CALLBACK_BASE_URL" envDefault:"https://auth.javadevjt.tech"`

	// HTTPTimeout bounds token exchange, JWKS and discovery calls.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// DefaultScopes apply when a provider's config has none.
	DefaultScopes string `env:"DEFAULT_SCOPES" envDefault:"openid profile email"`

	// AllowUnsignedIDTokens accepts unverified claims from providers without a jwks_uri.
	AllowUnsignedIDTokens bool `env:"ALLOW_UNSIGNED_ID_TOKENS" envDefault:"false"`
}

// Sanitize clamps the timeout and trims URLs.
func (c *OIDCConfig) Sanitize() {
	c.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(c.CallbackBaseURL), "/")
	c.DefaultScopes = strings.Join(strings.Fields(c.DefaultScopes), " ")
	if c.HTTPTimeout < minHTTPTimeout {
		c.HTTPTimeout = minHTTPTimeout
	}
	if c.HTTPTimeout > maxHTTPTimeout {
		c.HTTPTimeout = maxHTTPTimeout
	}
}
