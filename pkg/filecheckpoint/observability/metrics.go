package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records checkpoint metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCreate records a new checkpoint and the size of its files.
	RecordCreate(ctx context.Context, fileCount int, sizeBytes int64)

	// RecordEviction records a checkpoint dropped from a full history.
	RecordEviction(ctx context.Context)

	// RecordRestore records a restore and whether the checkpoint still existed.
	RecordRestore(ctx context.Context, found bool)

	// RecordArchive records an archive operation with its latency and outcome.
	RecordArchive(ctx context.Context, op string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	created        metric.Int64Counter
	checkpointSize metric.Int64Histogram
	fileCount      metric.Int64Histogram
	evicted        metric.Int64Counter
	restores       metric.Int64Counter
	archiveOps     metric.Int64Counter
	archiveLatency metric.Float64Histogram
	archiveErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the shared OTel instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("filecheckpoint")

	var (
		m   otelMetrics
		err error
	)

	if m.created, err = meter.Int64Counter("filecheckpoint.checkpoints.created",
		metric.WithDescription("Number of checkpoints created"),
	); err != nil {
		return nil, err
	}
	if m.checkpointSize, err = meter.Int64Histogram("filecheckpoint.checkpoint.size_bytes",
		metric.WithDescription("Total file content size per checkpoint"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.fileCount, err = meter.Int64Histogram("filecheckpoint.checkpoint.files",
		metric.WithDescription("Number of files per checkpoint"),
	); err != nil {
		return nil, err
	}
	if m.evicted, err = meter.Int64Counter("filecheckpoint.checkpoints.evicted",
		metric.WithDescription("Number of checkpoints evicted from full histories"),
	); err != nil {
		return nil, err
	}
	if m.restores, err = meter.Int64Counter("filecheckpoint.restores",
		metric.WithDescription("Number of restore requests"),
	); err != nil {
		return nil, err
	}
	if m.archiveOps, err = meter.Int64Counter("filecheckpoint.archive.operations",
		metric.WithDescription("Number of archive operations"),
	); err != nil {
		return nil, err
	}
	if m.archiveLatency, err = meter.Float64Histogram("filecheckpoint.archive.latency_ms",
		metric.WithDescription("Archive operation latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.archiveErrors, err = meter.Int64Counter("filecheckpoint.archive.errors",
		metric.WithDescription("Number of failed archive operations"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider; configure it with
// otel.SetMeterProvider before calling this function.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordCreate(ctx context.Context, fileCount int, sizeBytes int64) {
	m.created.Add(ctx, 1)
	m.checkpointSize.Record(ctx, sizeBytes)
	m.fileCount.Record(ctx, int64(fileCount))
}

func (m *otelMetrics) RecordEviction(ctx context.Context) {
	m.evicted.Add(ctx, 1)
}

func (m *otelMetrics) RecordRestore(ctx context.Context, found bool) {
	m.restores.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}

func (m *otelMetrics) RecordArchive(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))

	m.archiveOps.Add(ctx, 1, attrs)
	m.archiveLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.archiveErrors.Add(ctx, 1, attrs)
	}
}
