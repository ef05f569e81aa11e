// Package config holds the web binary's configuration: the shared client
// configuration plus the HTTP server, template, and cookie settings only
// the web front end needs.
package config

import (
	"fmt"

	"github.com/freelancekenya/kazi/internal/config"
)

// Config is the web service configuration
type Config struct {
	config.Config `yaml:",inline"`

	Server    ServerConfig    `yaml:"server"`
	Templates TemplatesConfig `yaml:"templates"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port int `yaml:"port" default:"8080"`
}

// TemplatesConfig points at the HTML template tree
type TemplatesConfig struct {
	Path string `yaml:"path" default:"web/templates"`
}

// SessionConfig holds the cookie-session settings. The cookie only carries
// OAuth state and flash messages; no identity tokens are persisted.
type SessionConfig struct {
	Secret string `yaml:"secret"` // base64-encoded 32 bytes
}

// Load loads the web configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Config: config.Defaults(),
		Server: ServerConfig{Port: 8080},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
	}

	if err := config.LoadInto(configPath, cfg); err != nil {
		return nil, err
	}

	config.ApplyEnvOverrides(&cfg.Config)

	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port must be between 1 and 65535")
	}

	return cfg, nil
}
