// Package config provides loading and parsing of engine.yaml
// configuration files. Engine configurations define the graph store
// connection, delta push transport, registry integration, and search
// limits for one engine instance.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents an engine.yaml configuration file.
type Config struct {
	// Identity
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`

	// Store holds the graph store connection settings.
	Store *StoreConfig `yaml:"store,omitempty"`

	// Delta holds the delta push settings.
	Delta *DeltaConfig `yaml:"delta,omitempty"`

	// Registry holds the instance registry settings.
	Registry *RegistryConfig `yaml:"registry,omitempty"`

	// Search holds the attack path search limits.
	Search *SearchConfig `yaml:"search,omitempty"`

	// LogLevel is the minimum log level: "debug", "info", "warn",
	// "error". Default "info".
	LogLevel string `yaml:"log_level,omitempty"`
}

// StoreConfig defines the graph store connection.
type StoreConfig struct {
	// URI is the store connection string (e.g., "bolt://localhost:7687").
	URI string `yaml:"uri"`

	// QueryTimeout bounds one store query. Go duration string, default
	// 30s.
	QueryTimeout string `yaml:"query_timeout,omitempty"`
}

// GetQueryTimeout parses the query timeout, falling back to the default
// when unset or invalid.
func (s *StoreConfig) GetQueryTimeout() time.Duration {
	if s == nil || s.QueryTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(s.QueryTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DeltaConfig defines the delta push transport and cadence.
type DeltaConfig struct {
	// RedisURL is the Redis connection string for delta pub/sub.
	RedisURL string `yaml:"redis_url,omitempty"`

	// PushInterval is how often the push loop runs per tenant. Go
	// duration string, default 30s.
	PushInterval string `yaml:"push_interval,omitempty"`
}

// GetPushInterval parses the push interval, falling back to the default
// when unset or invalid.
func (d *DeltaConfig) GetPushInterval() time.Duration {
	if d == nil || d.PushInterval == "" {
		return 30 * time.Second
	}
	interval, err := time.ParseDuration(d.PushInterval)
	if err != nil {
		return 30 * time.Second
	}
	return interval
}

// RegistryConfig defines etcd instance registration.
type RegistryConfig struct {
	// Endpoints is the etcd endpoint list. Empty disables registration.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace is the etcd key prefix. Default "skysentinel".
	Namespace string `yaml:"namespace,omitempty"`

	// TTL is the lease time-to-live in seconds. Default 30.
	TTL int `yaml:"ttl,omitempty"`
}

// SearchConfig defines attack path search limits.
type SearchConfig struct {
	// MaxDepth is the default traversal depth. Default 5.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// DepthCeiling is the hard depth cap. Default 10.
	DepthCeiling int `yaml:"depth_ceiling,omitempty"`

	// StepBudget caps edge expansions per query. Default 10000.
	StepBudget int `yaml:"step_budget,omitempty"`

	// MaxPaths caps paths returned per auto-discovery query. Default 20.
	MaxPaths int `yaml:"max_paths,omitempty"`

	// Timeout bounds one search. Go duration string, empty disables.
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout parses the search timeout. Zero when unset or invalid.
func (s *SearchConfig) GetTimeout() time.Duration {
	if s == nil || s.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// GetLogLevel returns the configured log level or "info".
func (c *Config) GetLogLevel() string {
	if c == nil || c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Validate checks the configuration for settings that cannot be
// defaulted away.
func (c *Config) Validate() error {
	if c.Store != nil && c.Store.URI == "" {
		return fmt.Errorf("store.uri is required when a store section is present")
	}
	if c.Search != nil {
		if c.Search.MaxDepth < 0 {
			return fmt.Errorf("search.max_depth cannot be negative")
		}
		if c.Search.DepthCeiling < 0 {
			return fmt.Errorf("search.depth_ceiling cannot be negative")
		}
		if c.Search.MaxDepth > 0 && c.Search.DepthCeiling > 0 && c.Search.MaxDepth > c.Search.DepthCeiling {
			return fmt.Errorf("search.max_depth cannot exceed search.depth_ceiling")
		}
	}
	switch c.GetLogLevel() {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Load reads and parses an engine.yaml file from the given path. If the
// path is a directory, it looks for engine.yaml or engine.yml there.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "engine.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "engine.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no engine.yaml or engine.yml found in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFromDir searches for engine.yaml starting from the given directory
// and walking up parent directories until found or the root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no engine.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}
