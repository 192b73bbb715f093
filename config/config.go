// Package config loads the service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr = ":8080"
	defaultAPI  = "http://localhost:5000/api"
)

type Config struct {
	// Addr is the listen address of the frontend service.
	Addr string `yaml:"addr"`

	API APIConfig `yaml:"api"`
}

// APIConfig points at the remote dictation API, including its path prefix.
type APIConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Parse reads the config file at path. A missing file yields the defaults.
// DIKTATOR_ADDR, DIKTATOR_API_URL and DIKTATOR_API_TOKEN override file values.
func Parse(path string) (*Config, error) {
	cfg := &Config{
		Addr: defaultAddr,

		API: APIConfig{
			URL: defaultAPI,
		},
	}

	data, err := os.ReadFile(path)

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("DIKTATOR_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("DIKTATOR_API_URL"); v != "" {
		cfg.API.URL = v
	}

	if v := os.Getenv("DIKTATOR_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}

	if cfg.API.URL == "" {
		return nil, errors.New("config: api.url must not be empty")
	}

	return cfg, nil
}
