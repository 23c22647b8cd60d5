// Package fusion implements the fusion engine (C10): it merges the
// text-layout side and the media/table side of a page into one spatially
// consistent, reading-ordered model. Coordinates are always transformed at
// this boundary — nothing downstream of Fuse ever sees a PDF-space rect
// again (§9 design note).
package fusion

import (
	"sort"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
)

// stdInDPIScale is the stand-in HTML-dimension multiplier applied to PDF
// dimensions for an image-only page with no text-side dimensions (§4.10
// step 1).
const stdInDPIScale = 1.5

// ResolvePageDimensions fills in HTMLWidth/HTMLHeight from PDF dimensions
// scaled by 1.5 when the page has no text side (media-only page). Pages
// with only media must never be dropped for lack of HTML dimensions.
func ResolvePageDimensions(page *model.Page) {
	if page.HTMLWidth > 0 && page.HTMLHeight > 0 {
		return
	}
	page.HTMLWidth = page.PDFWidth * stdInDPIScale
	page.HTMLHeight = page.PDFHeight * stdInDPIScale
}

// TransformToHTMLSpace converts every media and table rect from PDF-space
// to HTML-space in place (§4.10 step 2). When a page's dimensions are
// missing entirely, the transform is skipped for that page's elements and
// a CoordinateNormalizationSkipped warning is recorded — the element is
// still kept, never dropped.
func TransformToHTMLSpace(page *model.Page, summary *bookerr.Summary) {
	sx, sy := page.ScaleFactors()
	if sx <= 0 || sy <= 0 {
		summary.CoordSkippedf(page.Number, "page %d: missing PDF or HTML dimensions, coordinate transform skipped", page.Number)
		return
	}
	for _, m := range page.Media {
		m.Rect = m.Rect.Transform(sx, sy)
	}
	for _, tbl := range page.Tables {
		tbl.Rect = tbl.Rect.Transform(sx, sy)
	}
}

// FilterOverlappingText drops merged fragments whose rect is contained in,
// or overlaps beyond overlapFraction with, any media or table rect on the
// page — duplicate text rendered inside an image or table (§4.10 step 3).
// Paragraphs left with no fragments are removed entirely.
func FilterOverlappingText(page *model.Page, overlapFraction float64) {
	var regions []model.BBox
	for _, m := range page.Media {
		regions = append(regions, m.Rect)
	}
	for _, t := range page.Tables {
		regions = append(regions, t.Rect)
	}
	if len(regions) == 0 {
		return
	}

	var kept []model.Paragraph
	for _, para := range page.Paragraphs {
		var fragments []model.MergedFragment
		for _, f := range para.Fragments {
			if overlapsAnyRegion(f.BBox, regions, overlapFraction) {
				continue
			}
			fragments = append(fragments, f)
		}
		if len(fragments) > 0 {
			para.Fragments = fragments
			kept = append(kept, para)
		}
	}
	page.Paragraphs = kept
}

func overlapsAnyRegion(rect model.BBox, regions []model.BBox, overlapFraction float64) bool {
	for _, region := range regions {
		if region.ContainsBox(rect) {
			return true
		}
		if rect.OverlapRatioOf(region) > overlapFraction {
			return true
		}
	}
	return false
}

// AssignReadingOrder assigns every merged fragment a sequential integer
// reading_order in paragraph order, then interleaves media and table
// elements at the real-valued midpoint between the text fragments
// immediately before and after them in top-sorted order (§4.10 step 4).
// Reading order values are never truncated downstream — a media element
// between two text fragments with adjacent integer orders legitimately
// carries a fractional value.
func AssignReadingOrder(page *model.Page) {
	var texts []*model.MergedFragment
	order := 1.0
	for pi := range page.Paragraphs {
		for fi := range page.Paragraphs[pi].Fragments {
			f := &page.Paragraphs[pi].Fragments[fi]
			f.ReadingOrder = order
			texts = append(texts, f)
			order++
		}
	}

	sortedTexts := make([]*model.MergedFragment, len(texts))
	copy(sortedTexts, texts)
	sort.Slice(sortedTexts, func(i, j int) bool {
		return sortedTexts[i].BBox.Top() < sortedTexts[j].BBox.Top()
	})

	assign := func(top float64) float64 {
		return interleavedOrder(sortedTexts, top)
	}

	for _, m := range page.Media {
		m.ReadingOrder = assign(m.Rect.Top())
	}
	for _, t := range page.Tables {
		t.ReadingOrder = assign(t.Rect.Top())
	}
}

// interleavedOrder finds the neighbors of top within sortedTexts (already
// sorted ascending by BBox.Top) and returns the midpoint reading_order rule
// from §4.10 step 4.
func interleavedOrder(sortedTexts []*model.MergedFragment, top float64) float64 {
	if len(sortedTexts) == 0 {
		return 1.0
	}

	idx := sort.Search(len(sortedTexts), func(i int) bool {
		return sortedTexts[i].BBox.Top() >= top
	})

	var prevOrder, nextOrder float64
	hasPrev, hasNext := false, false

	if idx > 0 {
		prevOrder = sortedTexts[idx-1].ReadingOrder
		hasPrev = true
	}
	if idx < len(sortedTexts) {
		nextOrder = sortedTexts[idx].ReadingOrder
		hasNext = true
	}

	switch {
	case hasPrev && hasNext:
		return (prevOrder + nextOrder) / 2
	case hasNext:
		return nextOrder - 0.5
	case hasPrev:
		return prevOrder + 0.5
	default:
		return 1.0
	}
}

// Fuse runs the full C10 pipeline for one page: dimension resolution,
// coordinate transform, overlap filtering, and reading-order interleaving.
// Media and table candidates must already be attached to page (in
// PDF-space) before calling Fuse.
func Fuse(page *model.Page, opts config.Options, summary *bookerr.Summary) {
	ResolvePageDimensions(page)
	TransformToHTMLSpace(page, summary)
	FilterOverlappingText(page, opts.RasterVectorOverlapThreshold())
	AssignReadingOrder(page)
}

// UnionPageNumbers builds the sorted union of page numbers seen on the
// text side, the media side, and the table side (§4.10 step 1) so that a
// media-only or table-only page is never dropped for lack of a text-side
// counterpart.
func UnionPageNumbers(textPages, mediaPages, tablePages []int) []int {
	seen := map[int]bool{}
	for _, p := range textPages {
		seen[p] = true
	}
	for _, p := range mediaPages {
		seen[p] = true
	}
	for _, p := range tablePages {
		seen[p] = true
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
