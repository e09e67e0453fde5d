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
//   - auth.go: external authentication service endpoints and cookie names
//   - database.go: Redis connection used by the preference store
//   - http.go: HTTP server configuration
//   - preferences.go: auto-refresh preference persistence
//   - watch.go: terminal client settings
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// External authentication service configuration
	Auth AuthServiceConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Auto-refresh preference persistence
	Preferences PreferencesConfig

	// Redis connection (used when PREFERENCES_STORE=redis)
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Terminal client configuration
	Watch WatchConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.Preferences.Sanitize()
	c.Watch.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
