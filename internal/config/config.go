// Package config loads the application configuration from YAML with a
// conventional fallback chain: explicit path, then the user dotfile, then
// the system location, then built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Speech settings
	Speech struct {
		Model   string `yaml:"model"`
		Voice   string `yaml:"voice"`
		Backend string `yaml:"backend"`
	} `yaml:"speech"`

	// Output settings
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	// History settings
	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`

	// UI settings
	UI struct {
		WaveWidth  int `yaml:"wave_width"`
		WaveHeight int `yaml:"wave_height"`
	} `yaml:"ui"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Speech defaults
	cfg.Speech.Model = "gemini-2.5-flash-preview-tts"
	cfg.Speech.Voice = "Kore"
	cfg.Speech.Backend = "rest"

	// Output defaults: empty means current directory
	cfg.Output.Dir = ""

	// History defaults: empty path means the per-user default location
	cfg.History.Enabled = true
	cfg.History.Path = ""

	// UI defaults: zero means the component's own defaults
	cfg.UI.WaveWidth = 0
	cfg.UI.WaveHeight = 0

	return cfg
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations.
// Priority: explicit path > ~/.nihongo-voice.yaml > /etc/nihongo-voice/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config (~/.nihongo-voice.yaml)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".nihongo-voice.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	// Try system config
	systemConfigPath := "/etc/nihongo-voice/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
