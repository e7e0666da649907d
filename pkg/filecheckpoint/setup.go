package filecheckpoint

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/archive"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/config"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/observability"
)

// FromConfig builds a Manager from loaded configuration.
// Options in extra are applied last and override the configured values.
func FromConfig(cfg config.Config, extra ...Option) (*Manager, error) {
	return fromConfig(cfg, os.Stderr, extra...)
}

func fromConfig(cfg config.Config, logOut io.Writer, extra ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: observability.ParseLevel(cfg.Log.Level),
	}))

	codec, err := archive.NewCodec(cfg.Archive.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("create archive codec: %w", err)
	}

	opts := []Option{
		WithCapacity(cfg.Capacity),
		WithLogger(logger),
		WithTracing(cfg.Observability.Tracing),
		WithCodec(codec),
	}
	if cfg.Observability.Metrics {
		opts = append(opts, WithMetrics(observability.NewMetricsRecorder()))
	}

	switch cfg.Archive.Driver {
	case config.DriverMemory:
		opts = append(opts, WithArchive(archive.NewMemoryStore()))
	case config.DriverSQLite:
		store, err := archive.NewSQLiteStore(cfg.Archive.Path)
		if err != nil {
			codec.Close()
			return nil, fmt.Errorf("open archive: %w", err)
		}
		opts = append(opts, WithArchive(store))
	}

	return New(append(opts, extra...)...)
}
