package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordCreate does nothing.
func (NoopMetrics) RecordCreate(_ context.Context, _ int, _ int64) {}

// RecordEviction does nothing.
func (NoopMetrics) RecordEviction(_ context.Context) {}

// RecordRestore does nothing.
func (NoopMetrics) RecordRestore(_ context.Context, _ bool) {}

// RecordArchive does nothing.
func (NoopMetrics) RecordArchive(_ context.Context, _ string, _ time.Duration, _ error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
