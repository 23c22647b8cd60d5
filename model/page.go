package model

// Paragraph is an ordered run of merged fragments sharing (ColID,
// ReadingBlock) within a page (C7). A cross-page merge
// (layout.MergeAcrossPages) copies the next page's first paragraph's merged
// fragments onto this page's last paragraph and sets ContinuesToNext on it;
// the pipeline never sets ContinuedFromPrev.
type Paragraph struct {
	ColID        int
	ReadingBlock int
	Page         int

	Fragments []MergedFragment

	ContinuedFromPrev bool
	ContinuesToNext   bool
}

// Text concatenates the paragraph's merged-fragment text with single spaces.
func (p Paragraph) Text() string {
	var out string
	for i, f := range p.Fragments {
		if i > 0 {
			out += " "
		}
		out += f.Text
	}
	return out
}

// BBox returns the union of the paragraph's merged-fragment boxes.
func (p Paragraph) BBox() BBox {
	if len(p.Fragments) == 0 {
		return BBox{}
	}
	box := p.Fragments[0].BBox
	for _, f := range p.Fragments[1:] {
		box = box.Union(f.BBox)
	}
	return box
}

// Page holds one page's worth of pipeline state: the frozen fragment
// arena, the paragraphs assembled from it, and the media/table elements
// fused onto it. Rows are transient (C3) and are not retained past
// paragraph assembly.
type Page struct {
	Number int

	HTMLWidth, HTMLHeight float64
	PDFWidth, PDFHeight   float64

	// Fragments is the frozen arena. Merged fragments hold value copies of
	// their source fragments (FragmentRef) that record Fragment.Index as
	// SourceIndex; nothing holds a pointer back into the page.
	Fragments []Fragment

	Paragraphs []Paragraph
	Media      []*MediaElement
	Tables     []*Table

	// HasText/HasMedia record which source(s) contributed this page, needed
	// by the fusion engine to build the page-number union and by the
	// structural promoter's failure-semantics bookkeeping.
	HasText  bool
	HasMedia bool
}

// ScaleFactors returns the PDF->HTML axis scale factors for this page.
func (p *Page) ScaleFactors() (sx, sy float64) {
	return ScaleFactors(p.PDFWidth, p.PDFHeight, p.HTMLWidth, p.HTMLHeight)
}

// ExtractText concatenates all paragraph text on the page.
func (p *Page) ExtractText() string {
	var out string
	for i, para := range p.Paragraphs {
		if i > 0 {
			out += "\n\n"
		}
		out += para.Text()
	}
	return out
}

// ExtractTables returns the page's tables.
func (p *Page) ExtractTables() []*Table {
	return p.Tables
}
