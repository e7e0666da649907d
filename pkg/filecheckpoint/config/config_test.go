package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50, cfg.Capacity)
	assert.Equal(t, checkpoint.DefaultCapacity, cfg.Capacity)
	assert.Equal(t, DriverNone, cfg.Archive.Driver)
	assert.Equal(t, 2, cfg.Archive.CompressionLevel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Observability.Metrics)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, ErrInvalidCapacity},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, ErrInvalidCapacity},
		{"unknown driver", func(c *Config) { c.Archive.Driver = "postgres" }, ErrUnknownDriver},
		{"sqlite without path", func(c *Config) { c.Archive.Driver = DriverSQLite }, ErrArchivePathMissing},
		{"compression too low", func(c *Config) { c.Archive.CompressionLevel = 0 }, ErrInvalidCompression},
		{"compression too high", func(c *Config) { c.Archive.CompressionLevel = 5 }, ErrInvalidCompression},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, ErrUnknownLogLevel},
		{"memory driver", func(c *Config) { c.Archive.Driver = DriverMemory }, nil},
		{"sqlite with path", func(c *Config) {
			c.Archive.Driver = DriverSQLite
			c.Archive.Path = "x.db"
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
capacity: 20
archive:
  driver: sqlite
  path: /tmp/builder.db
  compression_level: 3
observability:
  metrics: true
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Capacity)
	assert.Equal(t, DriverSQLite, cfg.Archive.Driver)
	assert.Equal(t, "/tmp/builder.db", cfg.Archive.Path)
	assert.Equal(t, 3, cfg.Archive.CompressionLevel)
	assert.True(t, cfg.Observability.Metrics)
	assert.False(t, cfg.Observability.Tracing)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFromYAML_PartialKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("capacity: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, DriverNone, cfg.Archive.Driver)
	assert.Equal(t, 2, cfg.Archive.CompressionLevel)
}

func TestFromYAML_Empty(t *testing.T) {
	cfg, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromYAML_Errors(t *testing.T) {
	_, err := FromYAML([]byte("capacity: [not an int"))
	assert.Error(t, err)

	_, err = FromYAML([]byte("capasity: 10\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = FromYAML([]byte("capacity: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"capacity": 5, "archive": {"driver": "memory"}}`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, DriverMemory, cfg.Archive.Driver)

	_, err = FromJSON([]byte(`{"unknown": true}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"log": {"level": "loud"}}`))
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
}

func TestFromJSON_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n"} {
		cfg, err := FromJSON([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, Default(), cfg)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "builder.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("capacity: 7\n"), 0o644))
	cfg, err := FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Capacity)

	ymlPath := filepath.Join(dir, "builder.YML")
	require.NoError(t, os.WriteFile(ymlPath, []byte("capacity: 8\n"), 0o644))
	cfg, err = FromFile(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Capacity)

	jsonPath := filepath.Join(dir, "builder.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"capacity": 9}`), 0o644))
	cfg, err = FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Capacity)

	tomlPath := filepath.Join(dir, "builder.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("capacity = 1"), 0o644))
	_, err = FromFile(tomlPath)
	assert.Error(t, err)

	_, err = FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
