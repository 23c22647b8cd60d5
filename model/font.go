package model

import "golang.org/x/text/unicode/norm"

// FontStyle is a bitmask of style flags carried on a font entry.
type FontStyle int

const (
	StyleRegular FontStyle = 0
	StyleBold    FontStyle = 1 << iota
	StyleItalic
)

// FontEntry is a `<fontspec>` row from the text-layout input: the
// authoritative size/family/style for every fragment referencing its id.
// A fragment's effective size and family are always resolved through this
// table (C2) — never trusted from the fragment's own fields.
type FontEntry struct {
	ID     string
	Size   float64
	Family string
	Style  FontStyle
}

// IsBold reports whether the bold style flag is set.
func (f FontEntry) IsBold() bool { return f.Style&StyleBold != 0 }

// IsItalic reports whether the italic style flag is set.
func (f FontEntry) IsItalic() bool { return f.Style&StyleItalic != 0 }

// FontTable maps font id to its resolved entry.
type FontTable struct {
	entries map[string]FontEntry
	order   []string
}

// NewFontTable creates an empty font table.
func NewFontTable() *FontTable {
	return &FontTable{entries: make(map[string]FontEntry)}
}

// Add registers a font entry, preserving first-seen order for stable
// document-level emission.
func (t *FontTable) Add(e FontEntry) {
	if _, exists := t.entries[e.ID]; !exists {
		t.order = append(t.order, e.ID)
	}
	t.entries[e.ID] = e
}

// Lookup resolves a font id. ok is false when the id is absent, which
// callers must treat as FontLookupMissing (§7) rather than silently
// defaulting.
func (t *FontTable) Lookup(id string) (FontEntry, bool) {
	if t == nil {
		return FontEntry{}, false
	}
	e, ok := t.entries[id]
	return e, ok
}

// All returns every registered font entry in first-seen order.
func (t *FontTable) All() []FontEntry {
	if t == nil {
		return nil
	}
	out := make([]FontEntry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.entries[id])
	}
	return out
}

// Len reports the number of registered font entries.
func (t *FontTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// NormalizeUnicode normalizes decoded text to NFC so that downstream string
// comparisons (continuity checks, caption pattern matching, heading pattern
// matching) see a single canonical form regardless of how the upstream
// extractor composed accented characters.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}
