// Package tables implements the table extractor (C9): it consumes candidate
// tables already geometrically resolved by an external table-geometry
// detector (row/column rects and per-cell text, parsed by xmlin) and applies
// the caption-binding and caption-distance filter policy. It does not
// re-derive grid structure from raw text fragments — that responsibility
// belongs to the upstream candidate detector, not this package.
package tables
