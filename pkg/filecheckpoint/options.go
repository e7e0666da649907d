package filecheckpoint

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/archive"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/observability"
)

// managerConfig holds settings shared by every session of a Manager.
type managerConfig struct {
	capacity     int
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	store        archive.Store
	codec        *archive.Codec
	archiveFatal bool
	now          func() time.Time
	newID        func() string
}

func defaultManagerConfig() managerConfig {
	return managerConfig{
		capacity: checkpoint.DefaultCapacity,
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// historyOptions returns the options every session history is built with.
func (c *managerConfig) historyOptions() []checkpoint.Option {
	opts := []checkpoint.Option{checkpoint.WithCapacity(c.capacity)}
	if c.now != nil {
		opts = append(opts, checkpoint.WithClock(c.now))
	}
	if c.newID != nil {
		opts = append(opts, checkpoint.WithIDGenerator(c.newID))
	}
	return opts
}

// Option configures a Manager.
type Option func(*managerConfig)

// WithCapacity sets how many checkpoints each session retains.
// Default: 50. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(c *managerConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no metrics.
//
// Example:
//
//	m, _ := filecheckpoint.New(filecheckpoint.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(c *managerConfig) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// WithTracing enables OpenTelemetry spans around session operations.
func WithTracing(enabled bool) Option {
	return func(c *managerConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithArchive persists every checkpoint to store so sessions can be
// resumed after a restart. The manager closes store on Close.
func WithArchive(store archive.Store) Option {
	return func(c *managerConfig) {
		c.store = store
	}
}

// WithCodec sets the codec used for archived checkpoints.
// Default: a zstd codec at archive.DefaultCompressionLevel.
func WithCodec(codec *archive.Codec) Option {
	return func(c *managerConfig) {
		c.codec = codec
	}
}

// WithArchiveFailureFatal makes Create return archive failures.
// Default: false, failures are logged and the in-memory checkpoint is kept.
func WithArchiveFailureFatal(fatal bool) Option {
	return func(c *managerConfig) {
		c.archiveFatal = fatal
	}
}

// WithClock overrides the time source for checkpoint timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *managerConfig) {
		c.now = now
	}
}

// WithIDGenerator overrides checkpoint id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *managerConfig) {
		c.newID = newID
	}
}
