// Package observability provides structured logging, metrics, and tracing
// for builder checkpoint sessions.
//
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Metrics and tracing are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns a logger that tags every record with the session id.
func EnrichLogger(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("session_id", sessionID))
}

// LogCheckpointCreated logs a new checkpoint.
func LogCheckpointCreated(logger *slog.Logger, checkpointID, label string, fileCount int, sizeBytes int64) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint created",
		slog.String("checkpoint_id", checkpointID),
		slog.String("label", label),
		slog.Int("file_count", fileCount),
		slog.Int64("size_bytes", sizeBytes),
	)
}

// LogCheckpointEvicted logs a checkpoint dropped from a full history.
func LogCheckpointEvicted(logger *slog.Logger, checkpointID, label string) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint evicted",
		slog.String("checkpoint_id", checkpointID),
		slog.String("label", label),
	)
}

// LogRestore logs a restore attempt and whether the checkpoint was found.
func LogRestore(logger *slog.Logger, checkpointID string, found bool, fileCount int) {
	if logger == nil {
		return
	}
	if !found {
		logger.Info("checkpoint no longer available",
			slog.String("checkpoint_id", checkpointID),
		)
		return
	}
	logger.Debug("checkpoint restored",
		slog.String("checkpoint_id", checkpointID),
		slog.Int("file_count", fileCount),
	)
}

// LogResume logs a session rebuilt from the archive.
func LogResume(logger *slog.Logger, loaded int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("session resumed from archive",
		slog.Int("checkpoints_loaded", loaded),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogArchiveError logs a failed archive operation (non-fatal).
func LogArchiveError(logger *slog.Logger, checkpointID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint archive failed",
		slog.String("checkpoint_id", checkpointID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
