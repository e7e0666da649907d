package checkpoint

import "sort"

// Changes lists the paths that differ between two file sets.
// Each list is sorted.
type Changes struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// Empty reports whether no path differs.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Compare reports what applying target onto current would change:
// paths only in target are Added, paths only in current are Removed,
// and paths in both with different content are Modified.
func Compare(current, target Files) Changes {
	var c Changes
	for path, content := range target {
		old, ok := current[path]
		switch {
		case !ok:
			c.Added = append(c.Added, path)
		case old != content:
			c.Modified = append(c.Modified, path)
		}
	}
	for path := range current {
		if _, ok := target[path]; !ok {
			c.Removed = append(c.Removed, path)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Modified)
	sort.Strings(c.Removed)
	return c
}

// Diff reports what restoring checkpoint id onto current would change.
// It returns false if id is unknown or has been evicted.
func (h *History) Diff(id string, current Files) (Changes, bool) {
	i := h.index(id)
	if i < 0 {
		return Changes{}, false
	}
	return Compare(current, h.entries[i].Files), true
}
