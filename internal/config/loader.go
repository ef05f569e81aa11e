package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"/etc/kazi/config.yaml",
	"/etc/kazi/config.yml",
}

// Defaults returns the configuration defaults applied before any file is read
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "https://api.freelancekenya.co.ke",
			Timeout: Duration(15 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Activation: ActivationConfig{
			Fee:          1000,
			PollInterval: Duration(5 * time.Second),
			PollAttempts: 30,
		},
		Environment: "local",
	}
}

// LoadInto reads the config file at configPath (or the first default location
// when configPath is empty), expands ${VAR} references, and unmarshals into
// cfg. A .env file in the working directory, if present, is loaded first so
// those references resolve. A missing file leaves cfg untouched.
func LoadInto(configPath string, cfg interface{}) error {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" || !fileExists(configPath) {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies the environment overrides for secrets that
// should not live in the config file
func ApplyEnvOverrides(config *Config) {
	if key := os.Getenv("KAZI_IDENTITY_API_KEY"); key != "" {
		config.Identity.APIKey = key
	}
	if secret := os.Getenv("KAZI_GOOGLE_CLIENT_SECRET"); secret != "" {
		config.Identity.Google.ClientSecret = secret
	}
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := Defaults()

	if err := LoadInto(configPath, &config); err != nil {
		return nil, err
	}

	ApplyEnvOverrides(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
