// Package archive persists builder checkpoints beyond the life of a process.
package archive

import (
	"errors"
	"time"
)

// Store persists encoded checkpoints grouped by builder session.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the encoded checkpoint under (sessionID, checkpointID).
	// Saving an existing key replaces its data but keeps its sequence.
	Save(sessionID, checkpointID string, data []byte) error

	// Load retrieves an encoded checkpoint.
	// Returns ErrNotFound if it doesn't exist.
	Load(sessionID, checkpointID string) ([]byte, error)

	// List returns metadata for a session's checkpoints in the order they
	// were first saved. Returns an empty slice (not error) for an unknown session.
	List(sessionID string) ([]Info, error)

	// Delete removes one checkpoint. Returns nil if it doesn't exist.
	Delete(sessionID, checkpointID string) error

	// DeleteSession removes every checkpoint of a session.
	// Returns nil if the session has none.
	DeleteSession(sessionID string) error

	// Sessions returns the ids of sessions with at least one checkpoint,
	// sorted lexically.
	Sessions() ([]string, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored checkpoint without loading its data.
type Info struct {
	SessionID    string
	CheckpointID string
	Sequence     int
	Timestamp    time.Time
	Size         int64
}

// Sentinel errors for archive operations.
var (
	// ErrNotFound indicates a checkpoint doesn't exist in the archive.
	ErrNotFound = errors.New("archived checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("archive store closed")
)
