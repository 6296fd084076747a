package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the mastostat configuration file
const ConfigFileName = "config.yaml"

// DataDirName is the name of the mastostat data directory under $HOME
const DataDirName = ".mastostat"

// Config holds all mastostat configuration
type Config struct {
	API    APIConfig    `yaml:"api"`
	Output OutputConfig `yaml:"output"`
	Cache  CacheConfig  `yaml:"cache"`
}

// APIConfig holds configuration for the Mastodon API client
type APIConfig struct {
	// Token is the default bearer token; the --token flag overrides it.
	Token string `yaml:"token"`

	// TimeoutSeconds is the HTTP client timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// PageLimit is the admin roster page size.
	PageLimit int `yaml:"page_limit"`

	// TimelineLimit is the local timeline sample size.
	TimelineLimit int `yaml:"timeline_limit"`
}

// OutputConfig holds configuration for report output
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// CacheConfig holds configuration for the snapshot cache
type CacheConfig struct {
	// Disabled turns off recording of fetched API payloads.
	Disabled bool `yaml:"disabled"`

	// Dir overrides the cache location (default: ~/.mastostat).
	Dir string `yaml:"dir"`
}

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// DataDir returns the mastostat data directory (~/.mastostat).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads config from the given path, or from ~/.mastostat/config.yaml
// when path is empty. A missing file falls back to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			// No resolvable home directory; run on defaults.
			return DefaultConfig(), nil
		}
		path = defaultPath
	}
	return LoadFromPath(path)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// EnsureDataDir creates the ~/.mastostat directory if it doesn't exist.
// Returns the path to the directory.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	if err == nil {
		if info.IsDir() {
			return dir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return dir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if cfg.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.API.TimeoutSeconds)
	}

	if cfg.API.PageLimit <= 0 {
		return fmt.Errorf("%w: page_limit must be positive, got %d",
			ErrInvalidConfig, cfg.API.PageLimit)
	}

	if cfg.API.TimelineLimit <= 0 {
		return fmt.Errorf("%w: timeline_limit must be positive, got %d",
			ErrInvalidConfig, cfg.API.TimelineLimit)
	}

	if cfg.Output.DefaultFormat != "text" && cfg.Output.DefaultFormat != "json" {
		return fmt.Errorf("%w: default_format must be text or json, got %q",
			ErrInvalidConfig, cfg.Output.DefaultFormat)
	}

	return nil
}

// SaveDefault writes the default configuration to ~/.mastostat/config.yaml.
// Creates the data directory if it doesn't exist.
func SaveDefault() (string, error) {
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(dir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# mastostat configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
