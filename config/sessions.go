package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStore selects the verification session backend.
type SessionStore string

const (
	// SessionStorePostgres keeps sessions in the verification_sessions table.
	SessionStorePostgres SessionStore = "postgres"
	// SessionStoreRedis keeps sessions as JSON values with a TTL.
	SessionStoreRedis SessionStore = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStore.
func (s *SessionStore) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "redis":
		*s = SessionStore(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStore: %q (valid options: postgres, redis)", v)
	}
}

// SessionConfig contains verification session configuration.
type SessionConfig struct {
	// TTL is how long a session stays resolvable after creation.
	TTL time.Duration `env:"TTL" envDefault:"10m"`

	// Store selects the persistence backend.
	Store SessionStore `env:"STORE" envDefault:"postgres"`

	// RedisPrefix namespaces session keys when Store=redis.
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"verification_session:"`
}

// Sanitize applies defaults to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.Store == "" {
		c.Store = SessionStorePostgres
	}
	if c.RedisPrefix = strings.TrimSpace(c.RedisPrefix); c.RedisPrefix == "" {
		c.RedisPrefix = "verification_session:"
	}
}

// SweepConfig contains session sweeper configuration.
type SweepConfig struct {
	// Interval is the sweeper tick interval.
	Interval time.Duration `env:"INTERVAL" envDefault:"5m"`

	// Retention is how long terminal sessions are kept.
	Retention time.Duration `env:"RETENTION" envDefault:"24h"`

	// BatchSize is the maximum number of sessions deleted per statement.
	BatchSize int `env:"BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to sweep configuration values.
func (c *SweepConfig) Sanitize() {
	if c.Interval < time.Second {
		c.Interval = 5 * time.Minute
	}
	if c.Retention <= 0 {
		c.Retention = 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.BatchSize > 10000 {
		c.BatchSize = 10000
	}
}
