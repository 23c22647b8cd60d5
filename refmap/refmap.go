// Package refmap implements the reference resolver (C13): a single
// per-run map tracking an image's original->intermediate->final naming
// chain across pipeline stages, persistable between phases so a
// downstream process can recover the chain a prior phase built. All
// writes are serialized through a single mutex (§5: "the only shared
// mutable state across workers is the reference resolver ... all updates
// to it must be serialized").
package refmap

import (
	"os"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Entry is one tracked resource's naming chain and arbitrary metadata.
type Entry struct {
	Original     string            `json:"original"`
	Intermediate string            `json:"intermediate"`
	Final        string            `json:"final"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// Map is the reference resolver: a synchronized original-name-keyed
// table. The zero value is not usable; use New.
type Map struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates an empty resolver.
func New() *Map {
	return &Map{entries: make(map[string]*Entry)}
}

// AddResource registers a resource's original and intermediate name along
// with arbitrary metadata, overwriting any prior entry for the same
// original name. This is the single-writer mutation point; callers from
// multiple goroutines may call it concurrently.
func (m *Map) AddResource(original, intermediate string, meta map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[original] = &Entry{Original: original, Intermediate: intermediate, Meta: meta}
}

// UpdateFinalName records the final name for a previously added resource.
// If original was never added, a new entry is created with an empty
// intermediate name rather than silently dropping the update — the final
// name is still useful even if an earlier stage never called
// AddResource for this resource.
func (m *Map) UpdateFinalName(original, final string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[original]
	if !ok {
		e = &Entry{Original: original}
		m.entries[original] = e
	}
	e.Final = final
}

// NewSyntheticID returns a synthetic name for a resource with no page- or
// index-derived name available, using a random UUID (per SPEC_FULL.md
// §4.13) rather than a counter, so a name issued after a process restart
// mid-run does not collide with one issued before it. Each call returns a
// new name; the same resource does not get the same name twice.
func NewSyntheticID() string {
	return uuid.NewString()
}

// Export returns a consistent snapshot of the current map, sorted by
// original name for deterministic output.
func (m *Map) Export() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Original < out[j].Original })
	return out
}

// ExportToFile serializes a snapshot of the map to path using sonic's
// JSON-equivalent encoding.
func (m *Map) ExportToFile(path string) error {
	snapshot := m.Export()
	data, err := sonic.Marshal(snapshot)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportFromFile loads entries from a file previously written by
// ExportToFile, replacing the current contents of m. A failure to load
// is never fatal to the caller's pipeline run — the image flow between
// stages works by filename alone; losing the naming chain only disables
// rename-tracking and reporting. Callers should log the error and
// continue rather than abort.
func (m *Map) ImportFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []Entry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry, len(entries))
	for i := range entries {
		e := entries[i]
		m.entries[e.Original] = &e
	}
	return nil
}

// Lookup returns the entry for original, if any.
func (m *Map) Lookup(original string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[original]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len reports the number of tracked resources.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
