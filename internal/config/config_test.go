package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendIndexed, cfg.Storage.Backend)
	assert.Equal(t, "./trigraph_data", cfg.Storage.Path)
	assert.Equal(t, 5000, cfg.Storage.BatchSize)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestConfigLoading(t *testing.T) {
	t.Run("YAML overrides defaults", func(t *testing.T) {
		yamlBytes := []byte(`
storage:
  backend: badger
  path: /var/lib/trigraph
  sync_writes: true
metrics:
  enabled: true
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, BackendBadger, cfg.Storage.Backend)
		assert.Equal(t, "/var/lib/trigraph", cfg.Storage.Path)
		assert.True(t, cfg.Storage.SyncWrites)
		assert.True(t, cfg.Metrics.Enabled)
		// untouched keys keep their default
		assert.Equal(t, 5000, cfg.Storage.BatchSize)
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("TRIGRAPH_STORAGE_BACKEND", "memory")
		t.Setenv("TRIGRAPH_LOGGER_LEVEL", "debug")

		v := viper.New()
		SetDefaults(v)
		BindEnv(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("storage:\n  backend: badger\n")))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, cfg.Storage.Backend)
		assert.Equal(t, "debug", cfg.Logger.Level)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"badger without path", func(c *Config) {
			c.Storage.Backend = BackendBadger
			c.Storage.Path = ""
		}, "storage.path"},
		{"zero batch size", func(c *Config) { c.Storage.BatchSize = 0 }, "storage.batch_size"},
		{"unknown log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("NewConfigFromViper wraps validation errors", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("storage.batch_size", -1)

		cfg, err := NewConfigFromViper(v)
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
