package config

import (
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - oidc.go: identity provider protocol settings
//   - sessions.go: verification session lifetime and sweep
//   - database.go: Postgres and Redis connections
//   - observability.go: logging and metrics
//   - services.go: service modes
type AppConfig struct {
	// SecretsEncryptionKey decrypts provider client secrets (base64, 32 raw bytes).
	SecretsEncryptionKey string `env:"SECRETS_ENCRYPTION_KEY,required,notEmpty"`

	// OIDC protocol configuration
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Verification session configuration
	Sessions SessionConfig `envPrefix:"SESSION_"`
	Sweep    SweepConfig   `envPrefix:"SWEEP_"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"sweeper,metrics"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.SecretsEncryptionKey = strings.TrimSpace(c.SecretsEncryptionKey)
	c.OIDC.Sanitize()
	c.Sessions.Sanitize()
	c.Sweep.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsSweeperEnabled returns true if the session sweeper is enabled.
func (c *AppConfig) IsSweeperEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeSweeper]
}

// IsMetricsEnabled returns true if the metrics listener is enabled and has an address.
func (c *AppConfig) IsMetricsEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeMetrics] && c.Observability.Metrics.IsEnabled()
}
