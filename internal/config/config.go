package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Backend     BackendConfig    `yaml:"backend"`
	Identity    IdentityConfig   `yaml:"identity"`
	Logging     LoggingConfig    `yaml:"logging"`
	Activation  ActivationConfig `yaml:"activation"`
	Environment string           `yaml:"environment" default:"local"` // local, dev, prod
}

// Duration is a time.Duration that unmarshals from values like "5s" or "2m"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// BackendConfig points the client at the marketplace API
type BackendConfig struct {
	BaseURL string   `yaml:"base_url" default:"https://api.freelancekenya.co.ke"`
	Timeout Duration `yaml:"timeout" default:"15s"`
}

// IdentityConfig holds identity-provider configuration
type IdentityConfig struct {
	APIKey        string       `yaml:"api_key"`                  // identity-provider web API key
	AuthEndpoint  string       `yaml:"auth_endpoint,omitempty"`  // override for tests/emulator
	TokenEndpoint string       `yaml:"token_endpoint,omitempty"` // override for tests/emulator
	Google        GoogleConfig `yaml:"google"`
}

// GoogleConfig holds the Google OAuth client used by the web sign-in flow
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	RedirectURL  string `yaml:"redirect_url,omitempty"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // debug, info, warn, error
	Format string `yaml:"format" default:"text"` // text, json
}

// ActivationConfig holds account-activation payment parameters
type ActivationConfig struct {
	Fee          float64  `yaml:"fee" default:"1000"` // KSh
	PollInterval Duration `yaml:"poll_interval" default:"5s"`
	PollAttempts int      `yaml:"poll_attempts" default:"30"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Identity.APIKey == "" {
		return fmt.Errorf("identity.api_key is required")
	}
	if c.Activation.Fee <= 0 {
		return fmt.Errorf("activation.fee must be positive")
	}
	if c.Activation.PollAttempts < 1 {
		return fmt.Errorf("activation.poll_attempts must be at least 1")
	}
	return nil
}
