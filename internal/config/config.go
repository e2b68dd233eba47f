// Package config loads the application configuration from an optional YAML
// file and SERIALIZER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SERIALIZER_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	// Mappings is the path of the mapping configuration file.
	Mappings string `yaml:"mappings,omitempty"`

	// ClientID identifies this installation. Generated when absent.
	ClientID uuid.UUID `yaml:"client_id,omitempty"`

	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// MetricsConfig holds the optional Pushgateway target.
type MetricsConfig struct {
	PushURL string `yaml:"push_url,omitempty"`
	Job     string `yaml:"job,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Store:   StoreConfig{Driver: DriverMemory},
		Metrics: MetricsConfig{Job: "record-serializer"},
	}
}

// Load reads the file at path when it is not empty, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if cfg.ClientID == uuid.Nil {
		cfg.ClientID = uuid.New()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("MAPPINGS", &c.Mappings)
	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DSN", &c.Store.DSN)
	str("METRICS_PUSH_URL", &c.Metrics.PushURL)
	str("METRICS_JOB", &c.Metrics.Job)

	if v, ok := lookup(EnvPrefix + "LOG_PRETTY"); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_PRETTY: %w", EnvPrefix, err)
		}

		c.Log.Pretty = pretty
	}

	if v, ok := lookup(EnvPrefix + "CLIENT_ID"); ok {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid %sCLIENT_ID: %w", EnvPrefix, err)
		}

		c.ClientID = id
	}

	return nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for %s", ErrInvalidConfig, DriverPostgres)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}

	if c.Metrics.PushURL != "" && c.Metrics.Job == "" {
		return fmt.Errorf("%w: metrics.job is required with a push url", ErrInvalidConfig)
	}

	return nil
}
