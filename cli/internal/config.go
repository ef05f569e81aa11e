package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Context represents a named configuration context (like kubectl contexts)
type Context struct {
	Backend struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"backend"`
	Identity struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"identity"`
	Rendering struct {
		Theme string `yaml:"theme"`
	} `yaml:"rendering"`
}

// Config represents the CLI configuration with multiple contexts
type Config struct {
	CurrentContext string              `yaml:"current-context"`
	Contexts       map[string]*Context `yaml:"contexts"`
}

// DefaultConfig returns the default configuration with "dev" and "prod" contexts
func DefaultConfig() *Config {
	devContext := &Context{}
	devContext.Backend.BaseURL = "http://localhost:8000"
	devContext.Rendering.Theme = "auto"

	prodContext := &Context{}
	prodContext.Backend.BaseURL = "https://api.freelancekenya.co.ke"
	prodContext.Rendering.Theme = "auto"

	return &Config{
		CurrentContext: "prod",
		Contexts: map[string]*Context{
			"dev":  devContext,
			"prod": prodContext,
		},
	}
}

// GetCurrentContext returns the current active context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}

	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return nil, fmt.Errorf("current context %q not found", c.CurrentContext)
	}

	return ctx, nil
}

// SetCurrentContext sets the current active context
func (c *Config) SetCurrentContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds or updates a context
func (c *Config) AddContext(name string, ctx *Context) {
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if name == c.CurrentContext {
		return fmt.Errorf("cannot delete current context %q", name)
	}
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	delete(c.Contexts, name)
	return nil
}

// APIKey returns the identity API key for the current context,
// with KAZI_IDENTITY_API_KEY taking precedence
func (c *Config) APIKey() (string, error) {
	if key := os.Getenv("KAZI_IDENTITY_API_KEY"); key != "" {
		return key, nil
	}
	ctx, err := c.GetCurrentContext()
	if err != nil {
		return "", err
	}
	if ctx.Identity.APIKey == "" {
		return "", fmt.Errorf("no identity API key configured for context %q (set identity.api_key or KAZI_IDENTITY_API_KEY)", c.CurrentContext)
	}
	return ctx.Identity.APIKey, nil
}

// BackendURL returns the backend base URL for the current context
func (c *Config) BackendURL() (string, error) {
	ctx, err := c.GetCurrentContext()
	if err != nil {
		return "", err
	}
	return ctx.Backend.BaseURL, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".kazi"), nil
}

// LoadConfig loads configuration from ~/.kazi file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	// Read existing config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure we have a valid current context
	if config.CurrentContext == "" && len(config.Contexts) > 0 {
		// Pick the first context as default
		for name := range config.Contexts {
			config.CurrentContext = name
			break
		}
	}

	return &config, nil
}

// SaveConfig saves configuration to ~/.kazi file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
