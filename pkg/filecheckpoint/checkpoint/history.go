package checkpoint

import "time"

// History is a capacity-bounded timeline of checkpoints, oldest first.
//
// When a new checkpoint pushes the history past its capacity, the oldest
// checkpoints are evicted. Every value handed in or out is copied, so
// callers can never reach the stored file maps.
//
// History is not safe for concurrent use. Callers sharing one History
// across goroutines must serialize access to it.
type History struct {
	cfg     historyConfig
	entries []Checkpoint
	last    time.Time
}

// NewHistory creates an empty history.
func NewHistory(opts ...Option) *History {
	cfg := defaultHistoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &History{
		cfg:     cfg,
		entries: make([]Checkpoint, 0, cfg.capacity),
	}
}

// Create snapshots files under label and appends the snapshot to the history.
//
// Only the first description is used; without one the checkpoint gets
// DefaultDescription. The returned checkpoint is a copy of the stored one.
func (h *History) Create(files Files, label string, description ...string) Checkpoint {
	desc := DefaultDescription
	if len(description) > 0 {
		desc = description[0]
	}

	cp := Checkpoint{
		ID:          h.cfg.newID(),
		Timestamp:   h.stamp(),
		Label:       label,
		Description: desc,
		Files:       files.Clone(),
	}
	h.entries = append(h.entries, cp)
	h.trim()

	return cp.clone()
}

// Restore returns a fresh copy of the files recorded by checkpoint id.
// It returns nil and false if id is unknown or has been evicted.
func (h *History) Restore(id string) (Files, bool) {
	i := h.index(id)
	if i < 0 {
		return nil, false
	}
	return h.entries[i].Files.Clone(), true
}

// Get returns a copy of the retained checkpoint with the given id.
func (h *History) Get(id string) (Checkpoint, bool) {
	i := h.index(id)
	if i < 0 {
		return Checkpoint{}, false
	}
	return h.entries[i].clone(), true
}

// Latest returns a copy of the newest retained checkpoint.
func (h *History) Latest() (Checkpoint, bool) {
	if len(h.entries) == 0 {
		return Checkpoint{}, false
	}
	return h.entries[len(h.entries)-1].clone(), true
}

// All returns copies of every retained checkpoint in creation order.
// The result is never nil.
func (h *History) All() []Checkpoint {
	out := make([]Checkpoint, len(h.entries))
	for i, cp := range h.entries {
		out[i] = cp.clone()
	}
	return out
}

// Count returns the number of retained checkpoints.
func (h *History) Count() int {
	return len(h.entries)
}

// Capacity returns the maximum number of retained checkpoints.
func (h *History) Capacity() int {
	return h.cfg.capacity
}

// Load replaces the history with cps, given oldest first.
//
// Checkpoints are copied in. Entries repeating an id already loaded are
// skipped. If cps exceeds the capacity the oldest entries are evicted
// exactly as Create would evict them.
func (h *History) Load(cps []Checkpoint) {
	h.entries = h.entries[:0]
	h.last = time.Time{}

	seen := make(map[string]struct{}, len(cps))
	for _, cp := range cps {
		if _, dup := seen[cp.ID]; dup {
			continue
		}
		seen[cp.ID] = struct{}{}
		if cp.Timestamp.After(h.last) {
			h.last = cp.Timestamp
		}
		h.entries = append(h.entries, cp.clone())
	}
	h.trim()
}

// stamp returns the clock reading, never earlier than the previous stamp.
func (h *History) stamp() time.Time {
	now := h.cfg.now()
	if now.Before(h.last) {
		now = h.last
	}
	h.last = now
	return now
}

// trim evicts from the front until the history fits its capacity.
func (h *History) trim() {
	excess := len(h.entries) - h.cfg.capacity
	if excess <= 0 {
		return
	}
	if h.cfg.onEvict != nil {
		for _, cp := range h.entries[:excess] {
			h.cfg.onEvict(cp.clone())
		}
	}
	n := copy(h.entries, h.entries[excess:])
	clear(h.entries[n:])
	h.entries = h.entries[:n]
}

func (h *History) index(id string) int {
	for i := range h.entries {
		if h.entries[i].ID == id {
			return i
		}
	}
	return -1
}
