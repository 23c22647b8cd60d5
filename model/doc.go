// Package model is the intermediate representation shared by every stage of
// the book-conversion pipeline: geometry primitives (C1), the fragment and
// font-table model (C2), and the Page/Document containers that carry
// fragments, paragraphs, media, and tables from ingest through fusion to
// emission.
//
// Fragments are frozen once ingested; everything built on top of them
// (rows, merged fragments, paragraphs) holds value copies of fragment data,
// with FragmentRef.SourceIndex recording the source Fragment.Index, rather
// than pointers, which is what keeps paragraph<->page references acyclic
// despite both wanting to point at each other.
package model
