// Package config defines the necessary types to configure the library.
// An example config file config.yaml is provided in the repository.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	defaultBaseURL      = "https://api.dinver.eu/api/app"
	defaultTimeout      = 15 * time.Second
	defaultPageCacheTTL = 30 * time.Second
	defaultSQLitePath   = "appcore.db"
	defaultValKeyPrefix = "appcore"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendValKey = "valkey"
	BackendMemory = "memory"
)

type Config struct {
	API       API       `yaml:"api"`
	Discovery Discovery `yaml:"discovery"`
	Store     Store     `yaml:"store"`
}

type API struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type Discovery struct {
	PageCacheTTL time.Duration `yaml:"pageCacheTTL"`
}

type Store struct {
	Backend string `yaml:"backend"`
	SQLite  SQLite `yaml:"sqlite"`
	ValKey  ValKey `yaml:"valkey"`
}

type SQLite struct {
	Path string `yaml:"path"`
}

type ValKey struct {
	Address string `yaml:"address"`
	Prefix  string `yaml:"prefix"`
}

// Load reads and validates a YAML config file, filling in defaults for
// omitted fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a config with every field set to its default value.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaultTimeout
	}
	if c.Discovery.PageCacheTTL == 0 {
		c.Discovery.PageCacheTTL = defaultPageCacheTTL
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendSQLite
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = defaultSQLitePath
	}
	if c.Store.ValKey.Prefix == "" {
		c.Store.ValKey.Prefix = defaultValKeyPrefix
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendValKey, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendValKey && c.Store.ValKey.Address == "" {
		return fmt.Errorf("valkey backend requires an address")
	}

	return nil
}
