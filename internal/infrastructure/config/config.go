// Package config loads the orchestrator's settings from remedy.yaml,
// with environment overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configFile = "remedy.yaml"

// Config stores the connection settings for the incident services and
// the local monitor endpoint.
type Config struct {
	BackendURL     string `yaml:"backend_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MonitorAddr    string `yaml:"monitor_addr"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		BackendURL:     "http://localhost:8000",
		TimeoutSeconds: 120,
		MonitorAddr:    "",
	}
}

// Timeout returns the per-call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads remedy.yaml from root, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, configFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(cfg)

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend_url is empty")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Default().TimeoutSeconds
	}
	return cfg, nil
}

// Save writes the settings back to remedy.yaml under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(root, configFile), data, 0600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REMEDY_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("REMEDY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REMEDY_MONITOR_ADDR"); v != "" {
		cfg.MonitorAddr = v
	}
}
