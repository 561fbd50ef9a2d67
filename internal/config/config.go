// Package config loads the trigraph configuration through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRIGRAPH_STORAGE_BACKEND.
const EnvPrefix = "TRIGRAPH"

// Storage backends.
const (
	BackendMemory  = "memory"
	BackendIndexed = "indexed"
	BackendBadger  = "badger"
)

// Config holds the entire application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// StorageConfig selects and tunes the graph backend.
type StorageConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	Path       string `mapstructure:"path" yaml:"path"`
	SyncWrites bool   `mapstructure:"sync_writes" yaml:"sync_writes"`
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendIndexed)
	v.SetDefault("storage.path", "./trigraph_data")
	v.SetDefault("storage.sync_writes", false)
	v.SetDefault("storage.batch_size", 5000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "trigraph")

	v.SetDefault("metrics.enabled", false)
}

// BindEnv makes every key overridable through TRIGRAPH_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendIndexed:
	case BackendBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", BackendBadger)
		}
	default:
		return fmt.Errorf("storage.backend must be one of %s, %s, %s; got %q",
			BackendMemory, BackendIndexed, BackendBadger, c.Storage.Backend)
	}
	if c.Storage.BatchSize <= 0 {
		return fmt.Errorf("storage.batch_size must be a positive integer")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json; got %q", c.Logger.Format)
	}
	return nil
}
