package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: credential table and guard redirects
//   - catalog.go: event and exam file storage
//   - database.go: Postgres and Redis
//   - http.go: HTTP server
//   - session.go: client session slots and notifications
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev controls development mode behavior (templates from disk, no static caching).
	// Set DEV=true, NODE_ENV=development or APP_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP    HTTPConfig
	Session SessionConfig
	Auth    AuthConfig
	Catalog CatalogConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	Metrics MetricsConfig `envPrefix:"METRICS_"`

	CLI CLIConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.Auth.Sanitize()
	c.Catalog.Sanitize()
	c.Postgres.Sanitize()
	c.Metrics.Sanitize()
	c.CLI.Sanitize()

	c.detectDevMode()
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Session.Backend == SessionBackendRedis
}

// NeedsPostgres reports whether any configured backend talks to Postgres.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Catalog.Backend == CatalogBackendPostgres
}

// detectDevMode falls back to NODE_ENV and APP_ENV when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if c.IsDev {
		return
	}
	for _, key := range []string{"NODE_ENV", "APP_ENV"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		if v == "development" || v == "dev" {
			c.IsDev = true
			return
		}
	}
}
