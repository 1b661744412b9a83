// Package config loads the personstore.json configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "personstore.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = "localhost:8080"
)

// Storage backend kinds.
const (
	StorageMemory = "memory"
	StorageS3     = "s3"
	StorageHTTP   = "http"
)

// Config is the complete personstore.json configuration.
type Config struct {
	// Name is the deployment name, used in logs.
	Name string `json:"name,omitempty"`

	// Addr is the listen address for the server.
	Addr string `json:"addr,omitempty"`

	// Storage selects and configures the people backend.
	Storage StorageConfig `json:"storage,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"log_level,omitempty"`
}

// StorageConfig configures the people backend.
type StorageConfig struct {
	// Kind is one of "memory", "s3", "http".
	Kind string `json:"kind,omitempty"`

	// SeedFile is an optional JSON file of people loaded into the memory
	// backend at startup.
	SeedFile string `json:"seed_file,omitempty"`

	// Bucket, Prefix and Region configure the s3 backend.
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`

	// BaseURL configures the http backend.
	BaseURL string `json:"base_url,omitempty"`
}

// Default returns the default configuration: a memory backend on the
// default address.
func Default() *Config {
	return &Config{
		Addr:     DefaultAddr,
		LogLevel: "info",
		Storage: StorageConfig{
			Kind:   StorageMemory,
			Prefix: "people/",
		},
	}
}

// Load reads the configuration from path. A missing file yields the
// defaults; a present file is merged over them.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Kind {
	case StorageMemory:
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 storage requires a bucket")
		}
	case StorageHTTP:
		if c.Storage.BaseURL == "" {
			return fmt.Errorf("http storage requires a base_url")
		}
	default:
		return fmt.Errorf("unknown storage kind %q", c.Storage.Kind)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
