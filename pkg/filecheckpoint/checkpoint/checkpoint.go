// Package checkpoint provides a bounded, ordered history of file-tree snapshots.
package checkpoint

import (
	"encoding/json"
	"sort"
	"time"
)

// Version is the current checkpoint encoding version.
// Increment when making breaking changes to the JSON shape.
const Version = 1

// DefaultDescription is assigned when Create is called without a description.
const DefaultDescription = ""

// Files maps a file path to its content.
type Files map[string]string

// Clone returns a deep copy of f in a newly allocated map.
// A nil Files clones to an empty, non-nil map.
func (f Files) Clone() Files {
	out := make(Files, len(f))
	for path, content := range f {
		out[path] = content
	}
	return out
}

// Equal reports whether f and other hold the same paths and contents.
// A nil Files equals an empty one.
func (f Files) Equal(other Files) bool {
	if len(f) != len(other) {
		return false
	}
	for path, content := range f {
		got, ok := other[path]
		if !ok || got != content {
			return false
		}
	}
	return true
}

// Paths returns the file paths in lexical order.
func (f Files) Paths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Size returns the total content length in bytes.
func (f Files) Size() int64 {
	var n int64
	for _, content := range f {
		n += int64(len(content))
	}
	return n
}

// Checkpoint is an immutable snapshot of a file tree.
//
// Values returned by History never share their Files map with the
// history's internal state, so callers may modify them freely.
type Checkpoint struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Files       Files     `json:"files"`
}

// clone returns a copy of c with its own Files map.
func (c Checkpoint) clone() Checkpoint {
	c.Files = c.Files.Clone()
	return c
}

// envelope is the versioned JSON form of a Checkpoint.
// Paths and contents are carried as bytes so content that is not valid
// UTF-8 survives a round trip unchanged.
type envelope struct {
	Version     int        `json:"version"`
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Files       []wireFile `json:"files"`
}

type wireFile struct {
	Path    []byte `json:"path"`
	Content []byte `json:"content"`
}

// Marshal serializes a checkpoint to versioned JSON.
// Files are written in path order.
func (c Checkpoint) Marshal() ([]byte, error) {
	env := envelope{
		Version:     Version,
		ID:          c.ID,
		Timestamp:   c.Timestamp,
		Label:       c.Label,
		Description: c.Description,
		Files:       make([]wireFile, 0, len(c.Files)),
	}
	for _, path := range c.Files.Paths() {
		env.Files = append(env.Files, wireFile{Path: []byte(path), Content: []byte(c.Files[path])})
	}
	return json.Marshal(env)
}

// Unmarshal deserializes a checkpoint produced by Marshal.
// It returns ErrUnsupportedVersion for data written by a newer format.
func Unmarshal(data []byte) (Checkpoint, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Checkpoint{}, err
	}
	if env.Version > Version {
		return Checkpoint{}, ErrUnsupportedVersion
	}

	files := make(Files, len(env.Files))
	for _, f := range env.Files {
		files[string(f.Path)] = string(f.Content)
	}
	return Checkpoint{
		ID:          env.ID,
		Timestamp:   env.Timestamp,
		Label:       env.Label,
		Description: env.Description,
		Files:       files,
	}, nil
}
