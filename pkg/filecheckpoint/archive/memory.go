package archive

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps archived checkpoints in process memory.
// Useful for tests and for sessions that never outlive the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	closed   bool
}

// memorySession holds one session's checkpoints and its next sequence number.
type memorySession struct {
	nextSeq int
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(sessionID, checkpointID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	sess := m.sessions[sessionID]
	if sess == nil {
		sess = &memorySession{nextSeq: 1, entries: make(map[string]memoryEntry)}
		m.sessions[sessionID] = sess
	}

	seq := sess.nextSeq
	if existing, ok := sess.entries[checkpointID]; ok {
		seq = existing.sequence
	} else {
		sess.nextSeq++
	}

	sess.entries[checkpointID] = memoryEntry{
		data:      append([]byte(nil), data...),
		sequence:  seq,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(sessionID, checkpointID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	entry, ok := sess.entries[checkpointID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), entry.data...), nil
}

// List implements Store.
func (m *MemoryStore) List(sessionID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	sess, ok := m.sessions[sessionID]
	if !ok {
		return []Info{}, nil
	}

	infos := make([]Info, 0, len(sess.entries))
	for id, entry := range sess.entries {
		infos = append(infos, Info{
			SessionID:    sessionID,
			CheckpointID: id,
			Sequence:     entry.sequence,
			Timestamp:    entry.timestamp,
			Size:         int64(len(entry.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(sessionID, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(sess.entries, checkpointID)
	if len(sess.entries) == 0 {
		delete(m.sessions, sessionID)
	}
	return nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.sessions, sessionID)
	return nil
}

// Sessions implements Store.
func (m *MemoryStore) Sessions() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sessions = nil
	return nil
}

// Len returns the number of archived checkpoints across all sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, sess := range m.sessions {
		n += len(sess.entries)
	}
	return n
}
