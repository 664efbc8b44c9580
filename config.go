package goAuthClient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config groups every tunable of the SDK. Configure once, pass to
// [Builder.WithConfig], and treat as immutable afterwards.
type Config struct {
	API    APIConfig
	OAuth  OAuthConfig
	Google GoogleConfig
	Apple  AppleConfig
	Events EventsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the auth backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://api.example.com/v1".
	BaseURL string `env:"GOAUTH_API_BASE_URL"`
}

/*
====================================
OAUTH CONFIG
====================================
*/

// OAuthConfig gates the provider flows as a whole. Availability checks still
// run when disabled, so capability can be probed independently of the toggle.
type OAuthConfig struct {
	Enabled bool `env:"GOAUTH_OAUTH_ENABLED" envDefault:"true"`
}

// GoogleConfig carries the platform-specific client registration. The host
// passes the client ID matching the platform it was built for; a missing ID
// fails the flow fast with a configuration failure.
type GoogleConfig struct {
	ClientID    string `env:"GOAUTH_GOOGLE_CLIENT_ID"`
	RedirectURL string `env:"GOAUTH_GOOGLE_REDIRECT_URL"`

	// Issuer overrides OIDC discovery; leave empty for accounts.google.com.
	Issuer string `env:"GOAUTH_GOOGLE_ISSUER"`
}

// AppleConfig gates the native Apple flow separately from Google.
type AppleConfig struct {
	Enabled bool `env:"GOAUTH_APPLE_ENABLED" envDefault:"true"`
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig tunes the async session-event dispatcher.
type EventsConfig struct {
	Enabled    bool `env:"GOAUTH_EVENTS_ENABLED" envDefault:"true"`
	BufferSize int  `env:"GOAUTH_EVENTS_BUFFER" envDefault:"32"`

	// DropIfFull sheds events instead of blocking the operation that emits
	// them. Dropped events are counted, never silently lost.
	DropIfFull bool `env:"GOAUTH_EVENTS_DROP_IF_FULL" envDefault:"true"`
}

func defaultConfig() Config {
	return Config{
		OAuth: OAuthConfig{Enabled: true},
		Apple: AppleConfig{Enabled: true},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 32,
			DropIfFull: true,
		},
	}
}

// ConfigFromEnv loads configuration from GOAUTH_* environment variables on
// top of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return errors.New("config: API.BaseURL is required")
	}
	if cfg.Events.Enabled && cfg.Events.BufferSize <= 0 {
		return errors.New("config: Events.BufferSize must be positive when events are enabled")
	}
	return nil
}
