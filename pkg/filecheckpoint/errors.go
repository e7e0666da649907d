package filecheckpoint

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	// ErrSessionIDRequired indicates an operation was called with an empty session ID.
	ErrSessionIDRequired = errors.New("session ID required")

	// ErrCheckpointNotFound indicates the checkpoint is unknown or was evicted.
	// Callers should treat it as a normal outcome, e.g. "checkpoint no longer available".
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrManagerClosed indicates the manager has been closed.
	ErrManagerClosed = errors.New("checkpoint manager closed")

	// ErrNoArchive indicates an archive operation on a manager without one.
	ErrNoArchive = errors.New("no archive configured")
)

// ArchiveError wraps errors from persisting or loading archived checkpoints.
type ArchiveError struct {
	// SessionID is the session whose archive failed.
	SessionID string
	// CheckpointID is the checkpoint involved, empty for session-wide operations.
	CheckpointID string
	// Op is the operation that failed ("encode", "save", "delete", "list", "load", "decode", "purge").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	if e.CheckpointID == "" {
		return fmt.Sprintf("archive %s for session %s: %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("archive %s of checkpoint %s in session %s: %v", e.Op, e.CheckpointID, e.SessionID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ArchiveError) Unwrap() error {
	return e.Err
}
