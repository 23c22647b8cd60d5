package model

import "time"

// Document is the unified document produced by the fusion engine (C10) and
// emitted by the writer (C11): document-level metadata, a shared font
// table, and an ordered list of pages.
type Document struct {
	Metadata Metadata
	Fonts    *FontTable
	Pages    []*Page
}

// Metadata carries whatever document-level info the upstream extractors
// supply (title/author and similar); it is passed through unchanged, never
// inferred.
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     []string
	CreationDate time.Time
	Custom       map[string]string
}

// NewDocument creates a new empty document with initialized fields.
func NewDocument() *Document {
	return &Document{
		Metadata: Metadata{Custom: make(map[string]string)},
		Fonts:    NewFontTable(),
		Pages:    make([]*Page, 0),
	}
}

// AddPage appends a page, preserving whatever Number it already carries
// (pages are emitted by page number, not by append order — the fusion
// engine may process pages out of order across workers).
func (d *Document) AddPage(page *Page) {
	d.Pages = append(d.Pages, page)
}

// GetPage returns the page with the given 1-indexed page number, or nil.
func (d *Document) GetPage(number int) *Page {
	for _, p := range d.Pages {
		if p.Number == number {
			return p
		}
	}
	return nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// ExtractText concatenates every page's text, separated by blank lines.
func (d *Document) ExtractText() string {
	var out string
	for i, page := range d.Pages {
		if i > 0 {
			out += "\n\n"
		}
		out += page.ExtractText()
	}
	return out
}

// ExtractTables returns every table across every page, in page order.
func (d *Document) ExtractTables() []*Table {
	var tables []*Table
	for _, page := range d.Pages {
		tables = append(tables, page.ExtractTables()...)
	}
	return tables
}

// MediaCount returns the total number of media elements across all pages,
// used by the count-conservation property (§8 invariant 8).
func (d *Document) MediaCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Media)
	}
	return n
}
