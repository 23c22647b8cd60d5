package model

// ScriptType classifies a fragment marked by the script detector (C4).
type ScriptType int

const (
	// NotScript is the zero value: an ordinary fragment.
	NotScript ScriptType = iota
	// Superscript marks a fragment raised relative to its parent.
	Superscript
	// Subscript marks a fragment lowered relative to its parent.
	Subscript
)

// String renders the script type for logging and XML emission.
func (s ScriptType) String() string {
	switch s {
	case Superscript:
		return "superscript"
	case Subscript:
		return "subscript"
	default:
		return ""
	}
}

// Fragment is the leaf unit produced by the text extractor: one run of text
// sharing a single font at a single position. Fragments are immutable once
// ingested — script detection (C4) annotates a fragment's ScriptType and
// ScriptParentIdx fields in place, but never rewrites Text, position, or
// FontID, and Page never changes after ingest (data-model invariant 4).
type Fragment struct {
	// Index is this fragment's position in the owning Page's Fragments slice
	// as ingested; later stages (layout.AssignBlocks) re-sort that slice, so
	// Index is not its position afterwards.
	// Merged fragments and script links refer back to fragments by Index
	// rather than by pointer, so pages can be held in flat arenas (see the
	// design note on resolving cyclic paragraph/page references via arena
	// indices).
	Index int

	Text string
	Page int

	// Left/Top/Width/Height are in HTML-space at ingest time and never
	// change afterward.
	Left, Top, Width, Height float64

	// FontID resolves this fragment's effective size and family via the
	// owning Page's FontTable. Fragment.Bold/Italic are raw hints from the
	// extractor and may disagree with the font table; callers needing the
	// authoritative style must resolve through FontTable, not these fields.
	FontID string
	Bold   bool
	Italic bool

	IsScript        bool
	ScriptType      ScriptType
	ScriptParentIdx int // valid only when IsScript is true

	// ColID and ReadingBlock are populated by the column detector and block
	// assigner (C6). ColID 0 denotes full-width or cross-column content.
	ColID        int
	ReadingBlock int
}

// Baseline returns the fragment's text baseline, Top+Height.
func (f Fragment) Baseline() float64 {
	return f.Top + f.Height
}

// BBox returns the fragment's bounding box.
func (f Fragment) BBox() BBox {
	return NewBBoxWH(f.Left, f.Top, f.Width, f.Height)
}

// FragmentRef is a frozen copy of a fragment's text and metadata, retained
// as a child of a MergedFragment so that font/size/position provenance
// survives merging (data-model invariant 1: the union of a merged
// fragment's children's rects is contained in its own rect).
type FragmentRef struct {
	SourceIndex int
	Text        string
	BBox        BBox
	FontID      string
	IsScript    bool
	ScriptType  ScriptType
}

// MergedFragment is the result of row-internal merging (C5) and, where
// script cross-row merge applies, of splicing a script fragment's text into
// its parent. It carries the column/reading-block assignment and an
// ordered list of the source fragments it was built from.
type MergedFragment struct {
	Text string
	BBox BBox

	ColID        int
	ReadingBlock int
	RowIndex     int

	FontID string

	// ReadingOrder is assigned by the fusion engine (C10) and is always a
	// real number; never truncate it to an integer downstream.
	ReadingOrder float64

	// Children preserves the original fragments (including any spliced
	// scripts) in source order.
	Children []FragmentRef
}

// Rect is an alias kept for emitted-element code that reads more naturally
// talking about "rect" than "bbox" (matching the data model's own
// terminology for MediaElement and Table).
func (m MergedFragment) Rect() BBox { return m.BBox }
