package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS builder_checkpoints (
		session_id    TEXT    NOT NULL,
		checkpoint_id TEXT    NOT NULL,
		sequence      INTEGER NOT NULL,
		saved_at      TEXT    NOT NULL,
		data          BLOB    NOT NULL,
		PRIMARY KEY (session_id, checkpoint_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_builder_checkpoints_session
		ON builder_checkpoints(session_id, sequence)`,
}

// SQLiteStore archives checkpoints in a SQLite database.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a SQLite archive at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A :memory: database is private to one connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(sessionID, checkpointID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.Exec(`
		INSERT INTO builder_checkpoints (session_id, checkpoint_id, sequence, saved_at, data)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM builder_checkpoints WHERE session_id = ?), 0) + 1,
			?, ?
		)
		ON CONFLICT(session_id, checkpoint_id) DO UPDATE SET
			saved_at = excluded.saved_at,
			data = excluded.data
	`, sessionID, checkpointID, sessionID, time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(sessionID, checkpointID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM builder_checkpoints
		WHERE session_id = ? AND checkpoint_id = ?
	`, sessionID, checkpointID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return data, nil
}

// List implements Store.
func (s *SQLiteStore) List(sessionID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT checkpoint_id, sequence, saved_at, LENGTH(data)
		FROM builder_checkpoints
		WHERE session_id = ?
		ORDER BY sequence
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info := Info{SessionID: sessionID}
		var savedAt string
		if err := rows.Scan(&info.CheckpointID, &info.Sequence, &savedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan checkpoint info: %w", err)
		}
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, savedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(sessionID, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`
		DELETE FROM builder_checkpoints
		WHERE session_id = ? AND checkpoint_id = ?
	`, sessionID, checkpointID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// DeleteSession implements Store.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM builder_checkpoints WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session checkpoints: %w", err)
	}
	return nil
}

// Sessions implements Store.
func (s *SQLiteStore) Sessions() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT session_id FROM builder_checkpoints ORDER BY session_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
