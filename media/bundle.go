package media

import "sync"

// Bundle collects the sidecar files rendered across the page worker pool.
// Its single mutex mirrors refmap.Map's single-writer discipline (§5: the
// only shared mutable state across workers must be serialized) — a page
// worker calls Add as soon as it finishes rendering its own media, and the
// final bundle is read once after every worker has returned.
type Bundle struct {
	mu    sync.Mutex
	files []Sidecar
}

// NewBundle creates an empty sidecar bundle.
func NewBundle() *Bundle {
	return &Bundle{}
}

// Add records one rendered sidecar file.
func (b *Bundle) Add(s Sidecar) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, s)
}

// Files returns every sidecar recorded so far, in the order Add was called.
func (b *Bundle) Files() []Sidecar {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Sidecar, len(b.files))
	copy(out, b.files)
	return out
}
