package config

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
)

// Archive drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config holds checkpoint manager settings.
type Config struct {
	// Capacity is the number of checkpoints retained per session.
	Capacity int `yaml:"capacity" json:"capacity"`

	Archive       ArchiveConfig       `yaml:"archive" json:"archive"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
	Log           LogConfig           `yaml:"log" json:"log"`
}

// ArchiveConfig selects where checkpoints are persisted.
type ArchiveConfig struct {
	// Driver is one of "none", "memory" or "sqlite".
	Driver string `yaml:"driver" json:"driver"`

	// Path is the SQLite database file. Required for the sqlite driver.
	Path string `yaml:"path" json:"path"`

	// CompressionLevel is the zstd level from 1 (fastest) to 4 (smallest).
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
}

// ObservabilityConfig toggles OpenTelemetry instrumentation.
type ObservabilityConfig struct {
	Metrics bool `yaml:"metrics" json:"metrics"`
	Tracing bool `yaml:"tracing" json:"tracing"`
}

// LogConfig controls the default logger.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Capacity: checkpoint.DefaultCapacity,
		Archive: ArchiveConfig{
			Driver:           DriverNone,
			CompressionLevel: 2,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validation errors.
var (
	ErrInvalidCapacity    = errors.New("capacity must be positive")
	ErrUnknownDriver      = errors.New("unknown archive driver")
	ErrArchivePathMissing = errors.New("archive path required for sqlite driver")
	ErrInvalidCompression = errors.New("compression level must be between 1 and 4")
	ErrUnknownLogLevel    = errors.New("unknown log level")
)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Capacity)
	}

	switch c.Archive.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite:
		if c.Archive.Path == "" {
			return ErrArchivePathMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Archive.Driver)
	}

	if c.Archive.CompressionLevel < 1 || c.Archive.CompressionLevel > 4 {
		return fmt.Errorf("%w: %d", ErrInvalidCompression, c.Archive.CompressionLevel)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.Log.Level)
	}
	return nil
}
