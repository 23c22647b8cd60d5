package media

import (
	"fmt"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
	"github.com/tsawler/bookpack/xmlin"
)

// Content-area shrinkage margins, expressed as a fraction of the page's
// width/height (§4.8 step 1). These are fixed rather than config.Options
// knobs: the specification names them as constants of the algorithm, unlike
// the full-page and raster/vector-overlap thresholds which it calls out as
// tunable.
const (
	headerFraction = 0.08
	footerFraction = 0.08
	sideFraction   = 0.05
)

// textHeavyThreshold is the overlaid-text-block count at or above which a
// vector region is considered text-heavy (§4.8 step 5), reusing the same
// "<3 text blocks" boundary the specification uses for full-page-decorative
// classification in step 2.
const textHeavyThreshold = 3

// ContentArea returns pageRect shrunk by the header/footer/side margins.
func ContentArea(pageRect model.BBox) model.BBox {
	w, h := pageRect.Width(), pageRect.Height()
	return model.BBox{
		X1: pageRect.X1 + w*sideFraction,
		Y1: pageRect.Y1 + h*headerFraction,
		X2: pageRect.X2 - w*sideFraction,
		Y2: pageRect.Y2 - h*footerFraction,
	}
}

// FilterByContentArea drops rasters whose center lies outside the page's
// content area (§4.8 step 1).
func FilterByContentArea(rasters []xmlin.MediaCandidate, pageRect model.BBox) []xmlin.MediaCandidate {
	area := ContentArea(pageRect)
	var kept []xmlin.MediaCandidate
	for _, r := range rasters {
		if area.Contains(r.Rect.Center()) {
			kept = append(kept, r)
		}
	}
	return kept
}

// IsFullPageDecorative classifies a raster per §4.8 step 2: its area
// exceeds the configured fraction of the page area, and it overlays fewer
// than 3 text blocks.
func IsFullPageDecorative(r xmlin.MediaCandidate, pageArea float64, overlaidTextBlocks int, opts config.Options) bool {
	if pageArea <= 0 {
		return false
	}
	return r.Rect.Area()/pageArea > opts.FullPageThreshold() && overlaidTextBlocks < textHeavyThreshold
}

// IsComplexShape classifies a vector region per §4.8 step 3:
// #curves >= 1, or #non-rectangular-lines >= 3, or (curves present and
// multiple non-rectangular lines), or >= 2 quads.
func IsComplexShape(v xmlin.MediaCandidate) bool {
	if v.Curves >= 1 {
		return true
	}
	if v.NonRectLines >= 3 {
		return true
	}
	if v.Curves > 0 && v.NonRectLines >= 2 {
		return true
	}
	if v.Quads >= 2 {
		return true
	}
	return false
}

// isTextHeavy reports whether a vector region overlays enough text to be
// considered decoration-over-text rather than a standalone figure.
func isTextHeavy(v xmlin.MediaCandidate) bool {
	return v.TextBlockCount >= textHeavyThreshold
}

// DedupVectors drops a vector region V iff some raster R satisfies
// area(R∩V)/area(R) > threshold — directional by design (model.BBox's
// OverlapRatioOf, not IoU) so that a vector fully underlying a raster is
// detected as the raster's own background even when the vector's bounding
// box is much larger than the raster's (§4.8 step 4, S4).
func DedupVectors(vectors, rasters []xmlin.MediaCandidate, threshold float64) []xmlin.MediaCandidate {
	var kept []xmlin.MediaCandidate
	for _, v := range vectors {
		skip := false
		for _, r := range rasters {
			if r.Rect.OverlapRatioOf(v.Rect) > threshold {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, v)
		}
	}
	return kept
}

// FilterVectors applies §4.8 step 5: text-heavy and not complex-shape is
// skipped; text-heavy and complex-shape is kept; non-text-heavy vectors are
// kept unconditionally.
func FilterVectors(vectors []xmlin.MediaCandidate) []xmlin.MediaCandidate {
	var kept []xmlin.MediaCandidate
	for _, v := range vectors {
		if isTextHeavy(v) && !IsComplexShape(v) {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// ExtractPage runs the full C8 pipeline for one page's candidates: content-
// area filtering, full-page-decorative tagging, complex-shape tagging,
// raster/vector dedup, text-heavy filtering, and stable filename
// assignment. overlaidTextBlocks maps a raster or vector candidate ID to
// the count of text blocks it overlays; Convert fills it from each
// candidate's TextBlockCount as reported in the media/table input.
func ExtractPage(pageNumber int, candidates []xmlin.MediaCandidate, pageRect model.BBox, overlaidTextBlocks map[string]int, opts config.Options, summary *bookerr.Summary) []*model.MediaElement {
	var rasters, vectors []xmlin.MediaCandidate
	for _, c := range candidates {
		if c.Kind == model.Vector {
			vectors = append(vectors, c)
		} else {
			rasters = append(rasters, c)
		}
	}

	rasters = FilterByContentArea(rasters, pageRect)
	vectors = DedupVectors(vectors, rasters, opts.RasterVectorOverlapThreshold())
	vectors = FilterVectors(vectors)

	pageArea := pageRect.Area()

	elements := make([]*model.MediaElement, 0, len(rasters)+len(vectors))
	imgNum := 1

	for _, r := range rasters {
		el := &model.MediaElement{
			ID:      r.ID,
			Kind:    model.Raster,
			Rect:    r.Rect,
			Page:    pageNumber,
			FileRef: stableFilename(pageNumber, imgNum, r.File),
		}
		imgNum++
		el.IsFullPageDecorative = IsFullPageDecorative(r, pageArea, overlaidTextBlocks[r.ID], opts)
		elements = append(elements, el)
	}

	for _, v := range vectors {
		el := &model.MediaElement{
			ID:      v.ID,
			Kind:    model.Vector,
			Rect:    v.Rect,
			Page:    pageNumber,
			FileRef: stableFilename(pageNumber, imgNum, v.File),
		}
		imgNum++
		el.IsComplexShape = IsComplexShape(v)
		elements = append(elements, el)
	}

	summary.MediaEmitted += len(elements)
	return elements
}

// stableFilename assigns the spec's page{P}_img{N}.{ext} naming (§4.8 step
// 6). When the candidate carries no file reference (a vector materialized
// purely from geometry, with no embedded raster), ext defaults to "png"
// since vectors needing a sidecar are always rasterized to PNG.
func stableFilename(page, n int, sourceFile string) string {
	ext := extOf(sourceFile)
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("page%d_img%d.%s", page, n, ext)
}

func extOf(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i+1:]
		}
		if filename[i] == '/' {
			break
		}
	}
	return ""
}
