// Package config loads server configuration and mock fixtures.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrEmptyFile    = errors.New("configuration file is empty")
)

// Config is the server configuration.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string `yaml:"addr"`

	// MountPath is the URL prefix mock services are served under.
	MountPath string `yaml:"mountPath"`

	// EnableCORSPolicy turns on preflight handling for unmatched
	// OPTIONS requests.
	EnableCORSPolicy bool `yaml:"enableCorsPolicy"`

	// MocksDir is a directory of service fixture files loaded at startup.
	MocksDir string `yaml:"mocksDir"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:      ":8080",
		MountPath: "/rest",
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// LoadFromFile reads a Config from a YAML file. Unset fields keep their
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return cfg, fmt.Errorf("failed to read configuration: %w", err)
	}
	if len(data) == 0 {
		return cfg, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if cfg.MountPath == "" {
		cfg.MountPath = "/rest"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}
