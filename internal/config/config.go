// Package config holds the formpilot user configuration, stored as YAML at
// ~/.formpilot/config.yaml. Environment variables override the file so CI
// and scripts can point at a different backend without touching it.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete user configuration.
type Config struct {
	// ServerURL is the backend origin, e.g. http://localhost:8000.
	ServerURL string `yaml:"server_url"`

	// PollIntervalSeconds is the dashboard's job status refresh period.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// Theme selects the TUI color scheme ("light" or "dark").
	Theme string `yaml:"theme,omitempty"`

	// Debug enables verbose request logging.
	Debug bool `yaml:"debug,omitempty"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		ServerURL:           "http://localhost:8000",
		PollIntervalSeconds: 2,
		Theme:               "dark",
	}
}

// DefaultPath returns ~/.formpilot/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".formpilot", "config.yaml")
	}
	return filepath.Join(home, ".formpilot", "config.yaml")
}

// Load reads the config file, falling back to defaults when it is missing,
// and applies environment overrides either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnvOverrides()
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = Default().PollIntervalSeconds
	}
	return cfg, nil
}

// applyEnvOverrides layers FORMPILOT_* environment variables on top of the
// file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORMPILOT_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("FORMPILOT_THEME"); v != "" {
		c.Theme = v
	}
	if os.Getenv("FORMPILOT_DEBUG") == "1" {
		c.Debug = true
	}
}

// Save writes the config to path, creating the directory as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the config for obvious misconfiguration.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server_url %q is not a valid URL", c.ServerURL)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	return nil
}

// PollInterval returns the poll period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
