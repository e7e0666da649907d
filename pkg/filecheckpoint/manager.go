package filecheckpoint

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/archive"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/observability"
)

// Manager keeps an independent checkpoint history for each builder session.
//
// Operations on one session are serialized; different sessions proceed in
// parallel. A Manager is safe for concurrent use.
type Manager struct {
	cfg managerConfig

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// session pairs a history with the lock that guards it.
type session struct {
	mu      sync.Mutex
	id      string
	history *checkpoint.History
	logger  *slog.Logger

	// evicted collects checkpoints dropped by the history during the
	// current operation.
	evicted []checkpoint.Checkpoint

	// ended is set once the session has been removed from the manager.
	ended bool
}

// New creates a Manager.
func New(opts ...Option) (*Manager, error) {
	cfg := defaultManagerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.store != nil && cfg.codec == nil {
		codec, err := archive.NewCodec(archive.DefaultCompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("create archive codec: %w", err)
		}
		cfg.codec = codec
	}

	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*session),
	}, nil
}

func (m *Manager) newSession(id string) *session {
	s := &session{
		id:     id,
		logger: observability.EnrichLogger(m.cfg.logger, id),
	}
	opts := append(m.cfg.historyOptions(), checkpoint.WithEvictionHook(func(cp checkpoint.Checkpoint) {
		s.evicted = append(s.evicted, cp)
	}))
	s.history = checkpoint.NewHistory(opts...)
	return s
}

// acquire returns the session locked by the caller.
// With create false an unknown session yields nil and no error.
func (m *Manager) acquire(sessionID string, create bool) (*session, error) {
	s, _, err := m.acquireCreated(sessionID, create)
	return s, err
}

// acquireCreated is acquire that also reports whether the session was
// started by this call.
func (m *Manager) acquireCreated(sessionID string, create bool) (*session, bool, error) {
	if sessionID == "" {
		return nil, false, ErrSessionIDRequired
	}

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, false, ErrManagerClosed
		}
		s, ok := m.sessions[sessionID]
		if !ok {
			if !create {
				m.mu.Unlock()
				return nil, false, nil
			}
			s = m.newSession(sessionID)
			m.sessions[sessionID] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		if !s.ended {
			return s, !ok, nil
		}
		// Ended between lookup and lock; look again.
		s.mu.Unlock()
	}
}

// discard removes s from the manager. The caller holds s.mu.
func (m *Manager) discard(s *session) {
	s.ended = true
	m.mu.Lock()
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	m.mu.Unlock()
}

// Create snapshots files into the session's history, starting the session
// if needed, and archives the snapshot when an archive is configured.
//
// Archive failures are logged and do not fail the call unless
// WithArchiveFailureFatal is set; the returned checkpoint is retained
// in memory either way.
func (m *Manager) Create(ctx context.Context, sessionID string, files checkpoint.Files, label string, description ...string) (checkpoint.Checkpoint, error) {
	s, err := m.acquire(sessionID, true)
	if err != nil {
		return checkpoint.Checkpoint{}, err
	}
	defer s.mu.Unlock()

	ctx, span := m.cfg.spans.StartSpan(ctx, "create", sessionID)

	cp := s.history.Create(files, label, description...)
	size := cp.Files.Size()
	observability.LogCheckpointCreated(s.logger, cp.ID, cp.Label, len(cp.Files), size)
	m.cfg.metrics.RecordCreate(ctx, len(cp.Files), size)

	archiveErr := m.archiveSave(ctx, s, cp)
	if err := m.drainEvicted(ctx, s); archiveErr == nil {
		archiveErr = err
	}
	m.cfg.spans.EndSpanWithError(span, archiveErr)

	if archiveErr != nil && m.cfg.archiveFatal {
		return cp, archiveErr
	}
	return cp, nil
}

// Restore returns a fresh copy of the files recorded by checkpoint id.
// It returns ErrCheckpointNotFound if the session or checkpoint is unknown,
// or the checkpoint has been evicted.
func (m *Manager) Restore(ctx context.Context, sessionID, id string) (checkpoint.Files, error) {
	s, err := m.acquire(sessionID, false)
	if err != nil {
		return nil, err
	}

	ctx, span := m.cfg.spans.StartSpan(ctx, "restore", sessionID)

	var (
		files checkpoint.Files
		found bool
	)
	logger := observability.EnrichLogger(m.cfg.logger, sessionID)
	if s != nil {
		files, found = s.history.Restore(id)
		logger = s.logger
		s.mu.Unlock()
	}

	observability.LogRestore(logger, id, found, len(files))
	m.cfg.metrics.RecordRestore(ctx, found)
	span.SetAttributes(attribute.String("checkpoint.id", id), attribute.Bool("checkpoint.found", found))
	m.cfg.spans.EndSpanWithError(span, nil)

	if !found {
		return nil, ErrCheckpointNotFound
	}
	return files, nil
}

// Get returns a copy of one retained checkpoint.
func (m *Manager) Get(sessionID, id string) (checkpoint.Checkpoint, error) {
	s, err := m.acquire(sessionID, false)
	if err != nil {
		return checkpoint.Checkpoint{}, err
	}
	if s == nil {
		return checkpoint.Checkpoint{}, ErrCheckpointNotFound
	}
	defer s.mu.Unlock()

	cp, ok := s.history.Get(id)
	if !ok {
		return checkpoint.Checkpoint{}, ErrCheckpointNotFound
	}
	return cp, nil
}

// List returns the session's retained checkpoints, oldest first.
// An unknown session has an empty timeline.
func (m *Manager) List(sessionID string) ([]checkpoint.Checkpoint, error) {
	s, err := m.acquire(sessionID, false)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return []checkpoint.Checkpoint{}, nil
	}
	defer s.mu.Unlock()

	return s.history.All(), nil
}

// Count returns the number of checkpoints the session retains.
func (m *Manager) Count(sessionID string) (int, error) {
	s, err := m.acquire(sessionID, false)
	if err != nil || s == nil {
		return 0, err
	}
	defer s.mu.Unlock()

	return s.history.Count(), nil
}

// Diff reports what restoring checkpoint id onto current would change.
func (m *Manager) Diff(sessionID, id string, current checkpoint.Files) (checkpoint.Changes, error) {
	s, err := m.acquire(sessionID, false)
	if err != nil {
		return checkpoint.Changes{}, err
	}
	if s == nil {
		return checkpoint.Changes{}, ErrCheckpointNotFound
	}
	defer s.mu.Unlock()

	changes, ok := s.history.Diff(id, current)
	if !ok {
		return checkpoint.Changes{}, ErrCheckpointNotFound
	}
	return changes, nil
}

// Resume rebuilds the session's history from the archive and returns the
// number of checkpoints it now retains. In-memory checkpoints of the
// session are replaced.
func (m *Manager) Resume(ctx context.Context, sessionID string) (n int, err error) {
	if sessionID != "" && m.cfg.store == nil {
		return 0, ErrNoArchive
	}
	s, created, err := m.acquireCreated(sessionID, true)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	defer func() {
		// A failed resume leaves no trace of a session it started.
		if err != nil && created {
			m.discard(s)
		}
	}()

	ctx, span := m.cfg.spans.StartSpan(ctx, "resume", sessionID)
	defer func() { m.cfg.spans.EndSpanWithError(span, err) }()
	done := observability.TimedOperation()

	start := time.Now()
	infos, err := m.cfg.store.List(sessionID)
	m.cfg.metrics.RecordArchive(ctx, "list", time.Since(start), err)
	if err != nil {
		return 0, m.archiveFailed(s, "", "list", err)
	}

	cps := make([]checkpoint.Checkpoint, 0, len(infos))
	for _, info := range infos {
		start := time.Now()
		data, err := m.cfg.store.Load(sessionID, info.CheckpointID)
		m.cfg.metrics.RecordArchive(ctx, "load", time.Since(start), err)
		if err != nil {
			return 0, m.archiveFailed(s, info.CheckpointID, "load", err)
		}
		cp, err := m.cfg.codec.Decode(data)
		if err != nil {
			return 0, m.archiveFailed(s, info.CheckpointID, "decode", err)
		}
		cps = append(cps, cp)
	}

	s.history.Load(cps)
	// An archive holding more than the capacity is trimmed to match;
	// delete failures are logged by drainEvicted.
	_ = m.drainEvicted(ctx, s)

	n = s.history.Count()
	observability.LogResume(s.logger, n, done())
	return n, nil
}

// EndSession drops the session's in-memory history. With purge set,
// its archived checkpoints are deleted too.
func (m *Manager) EndSession(ctx context.Context, sessionID string, purge bool) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	s := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	logger := observability.EnrichLogger(m.cfg.logger, sessionID)
	if s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ended = true
		logger = s.logger
	}

	if !purge || m.cfg.store == nil {
		return nil
	}

	start := time.Now()
	err := m.cfg.store.DeleteSession(sessionID)
	m.cfg.metrics.RecordArchive(ctx, "purge", time.Since(start), err)
	if err != nil {
		observability.LogArchiveError(logger, "", "purge", err)
		return &ArchiveError{SessionID: sessionID, Op: "purge", Err: err}
	}
	return nil
}

// Sessions returns the ids of sessions with in-memory state, sorted.
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ArchivedSessions returns the ids of sessions present in the archive.
func (m *Manager) ArchivedSessions() ([]string, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrManagerClosed
	}
	if m.cfg.store == nil {
		return nil, ErrNoArchive
	}
	return m.cfg.store.Sessions()
}

// Close ends every session and closes the archive store and codec.
// Later calls to other methods return ErrManagerClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = nil
	m.mu.Unlock()

	// Wait for in-flight operations.
	for _, s := range sessions {
		s.mu.Lock()
		s.ended = true
		s.mu.Unlock()
	}

	var err error
	if m.cfg.store != nil {
		err = m.cfg.store.Close()
	}
	if m.cfg.codec != nil {
		m.cfg.codec.Close()
	}
	return err
}

// archiveSave encodes and stores cp. No-op without an archive.
func (m *Manager) archiveSave(ctx context.Context, s *session, cp checkpoint.Checkpoint) error {
	if m.cfg.store == nil {
		return nil
	}

	data, err := m.cfg.codec.Encode(cp)
	if err != nil {
		return m.archiveFailed(s, cp.ID, "encode", err)
	}

	start := time.Now()
	err = m.cfg.store.Save(s.id, cp.ID, data)
	m.cfg.metrics.RecordArchive(ctx, "save", time.Since(start), err)
	if err != nil {
		return m.archiveFailed(s, cp.ID, "save", err)
	}
	return nil
}

// drainEvicted reports checkpoints the history dropped during the current
// operation and removes them from the archive. It returns the first
// archive failure.
func (m *Manager) drainEvicted(ctx context.Context, s *session) error {
	evicted := s.evicted
	s.evicted = nil

	var firstErr error
	for _, cp := range evicted {
		observability.LogCheckpointEvicted(s.logger, cp.ID, cp.Label)
		m.cfg.metrics.RecordEviction(ctx)
		m.cfg.spans.AddSpanEvent(ctx, "checkpoint.evicted", attribute.String("checkpoint.id", cp.ID))

		if m.cfg.store == nil {
			continue
		}
		start := time.Now()
		err := m.cfg.store.Delete(s.id, cp.ID)
		m.cfg.metrics.RecordArchive(ctx, "delete", time.Since(start), err)
		if err != nil && firstErr == nil {
			firstErr = m.archiveFailed(s, cp.ID, "delete", err)
		}
	}
	return firstErr
}

func (m *Manager) archiveFailed(s *session, checkpointID, op string, err error) error {
	observability.LogArchiveError(s.logger, checkpointID, op, err)
	return &ArchiveError{SessionID: s.id, CheckpointID: checkpointID, Op: op, Err: err}
}
