// Package config holds the in-memory, immutable-by-convention options
// object for a conversion run. It deliberately has no file-loading or flag-
// parsing surface — CLI/config surfaces are an external collaborator (§1) —
// and follows the teacher's own ExtractOptions shape: a struct with
// unexported fields,
// a Default constructor, a clone for safe fluent mutation, and With*
// setters that return a modified copy.
package config

import "math"

// Options holds every tunable named in the external-interfaces section of
// the specification.
type Options struct {
	dpi int

	requireTableCaption bool
	maxCaptionDistance  float64

	fullPageThreshold           float64
	rasterVectorOverlapThresh   float64

	paragraphGapMultiplier float64
	baselineTolerance      float64 // 0 means "auto": max(2.0, 0.15*medianHeight)

	scriptMaxWidth  float64
	scriptMaxHeight float64
	scriptMaxLen    int
	subscriptMaxTopDiff   float64
	superscriptTopDiff    float64

	indentTolerancePt float64
	listMarkers       map[rune]bool
	minListItems      int

	workerLimit  int // 0 means "use available cores"
	pageTimeout  float64 // seconds; 0 means the pipeline's default budget
	freeEveryN   int     // pages between explicit memory releases
}

// Default returns the specification's documented defaults (§6).
func Default() Options {
	return Options{
		dpi: 200,

		requireTableCaption: true, // Open Question resolved in DESIGN.md: strict by default
		maxCaptionDistance:  100,

		fullPageThreshold:         0.85,
		rasterVectorOverlapThresh: 0.20,

		paragraphGapMultiplier: 2.0,
		baselineTolerance:      0,

		scriptMaxWidth:      15,
		scriptMaxHeight:     12,
		scriptMaxLen:        3,
		subscriptMaxTopDiff: 10,
		superscriptTopDiff:  3,

		indentTolerancePt: 15,
		listMarkers:       defaultListMarkers(),
		minListItems:      2,

		workerLimit: 0,
		pageTimeout: 0,
		freeEveryN:  25,
	}
}

func defaultListMarkers() map[rune]bool {
	marks := map[rune]bool{}
	for _, r := range []rune{'•', '◦', '▪', '✓', '●', '○', '■', '□', '–', '—'} {
		marks[r] = true
	}
	return marks
}

func (o Options) clone() Options {
	cp := o
	cp.listMarkers = make(map[rune]bool, len(o.listMarkers))
	for k, v := range o.listMarkers {
		cp.listMarkers[k] = v
	}
	return cp
}

// WithDPI sets the raster render resolution returned by DPI. No stage of
// Convert reads it: sidecar rasterization (media.RasterizeVector) renders
// at the element's own width and height.
func (o Options) WithDPI(dpi int) Options {
	c := o.clone()
	c.dpi = dpi
	return c
}

// WithRequireTableCaption toggles the caption-distance filter policy (C9).
func (o Options) WithRequireTableCaption(require bool) Options {
	c := o.clone()
	c.requireTableCaption = require
	return c
}

// WithMaxCaptionDistance sets the caption search radius in points.
func (o Options) WithMaxCaptionDistance(points float64) Options {
	c := o.clone()
	c.maxCaptionDistance = points
	return c
}

// WithFullPageThreshold sets the area fraction above which an image is a
// full-page-decorative candidate (C8).
func (o Options) WithFullPageThreshold(frac float64) Options {
	c := o.clone()
	c.fullPageThreshold = frac
	return c
}

// WithRasterVectorOverlapThreshold sets the dedup threshold for C8.
func (o Options) WithRasterVectorOverlapThreshold(frac float64) Options {
	c := o.clone()
	c.rasterVectorOverlapThresh = frac
	return c
}

// WithParagraphGapMultiplier sets the paragraph-break vertical-gap
// multiplier (C7), expressed as a multiple of median line height.
func (o Options) WithParagraphGapMultiplier(mult float64) Options {
	c := o.clone()
	c.paragraphGapMultiplier = mult
	return c
}

// WithBaselineTolerance sets a fixed row-grouping baseline tolerance (C3).
// Pass 0 to restore the adaptive default.
func (o Options) WithBaselineTolerance(px float64) Options {
	c := o.clone()
	c.baselineTolerance = px
	return c
}

// WithScriptEnvelope sets the script-detection size/length envelope (C4).
func (o Options) WithScriptEnvelope(maxWidth, maxHeight float64, maxLen int) Options {
	c := o.clone()
	c.scriptMaxWidth = maxWidth
	c.scriptMaxHeight = maxHeight
	c.scriptMaxLen = maxLen
	return c
}

// WithIndentTolerance sets the list-item indentation tolerance in points
// (C12) returned by IndentTolerancePt. promote.PromoteLists does not read
// it; list promotion always uses its own fixed 15pt tolerance.
func (o Options) WithIndentTolerance(points float64) Options {
	c := o.clone()
	c.indentTolerancePt = points
	return c
}

// WithMinListItems sets the minimum run length to promote a list (C12)
// returned by MinListItems. promote.PromoteLists does not read it; list
// promotion always requires its own fixed minimum of 2 items.
func (o Options) WithMinListItems(n int) Options {
	c := o.clone()
	c.minListItems = n
	return c
}

// WithWorkerLimit bounds the per-page worker pool size (§5). 0 keeps the
// pipeline default of one worker per available CPU. A Converter's own
// WithConcurrency setting takes precedence.
func (o Options) WithWorkerLimit(n int) Options {
	c := o.clone()
	c.workerLimit = n
	return c
}

// WithPageTimeoutSeconds sets the per-page wall-clock budget (§5). 0 keeps
// the pipeline default of 30 seconds. A Converter's own WithPageTimeout
// setting takes precedence.
func (o Options) WithPageTimeoutSeconds(seconds float64) Options {
	c := o.clone()
	c.pageTimeout = seconds
	return c
}

// WithFreeEveryN sets the page interval returned by FreeEveryN (§5
// Memory). No stage of Convert reads it, and Convert makes no explicit
// memory releases between pages.
func (o Options) WithFreeEveryN(n int) Options {
	c := o.clone()
	c.freeEveryN = n
	return c
}

// Accessors — exported as plain getters since the fields themselves stay
// unexported to keep mutation routed through the With* builders.

func (o Options) DPI() int                      { return o.dpi }
func (o Options) RequireTableCaption() bool      { return o.requireTableCaption }
func (o Options) MaxCaptionDistance() float64    { return o.maxCaptionDistance }
func (o Options) FullPageThreshold() float64     { return o.fullPageThreshold }
func (o Options) RasterVectorOverlapThreshold() float64 {
	return o.rasterVectorOverlapThresh
}
func (o Options) ParagraphGapMultiplier() float64 { return o.paragraphGapMultiplier }
func (o Options) ScriptMaxWidth() float64         { return o.scriptMaxWidth }
func (o Options) ScriptMaxHeight() float64        { return o.scriptMaxHeight }
func (o Options) ScriptMaxLen() int               { return o.scriptMaxLen }
func (o Options) SubscriptMaxTopDiff() float64    { return o.subscriptMaxTopDiff }
func (o Options) SuperscriptTopDiff() float64     { return o.superscriptTopDiff }
func (o Options) IndentTolerancePt() float64      { return o.indentTolerancePt }
func (o Options) MinListItems() int               { return o.minListItems }
func (o Options) WorkerLimit() int                { return o.workerLimit }
func (o Options) PageTimeoutSeconds() float64     { return o.pageTimeout }
func (o Options) FreeEveryN() int                 { return o.freeEveryN }

// IsListMarker reports whether r is a configured bulleted-list marker.
// "-" and roman numerals are intentionally excluded from the default set
// (§6) since they collide too often with hyphenation and enumeration.
func (o Options) IsListMarker(r rune) bool {
	return o.listMarkers[r]
}

// BaselineTolerance resolves the effective row-grouping tolerance (C3):
// max(2.0, 0.15 * medianHeight) unless a fixed override was set.
func (o Options) BaselineTolerance(medianHeight float64) float64 {
	if o.baselineTolerance > 0 {
		return o.baselineTolerance
	}
	return math.Max(2.0, 0.15*medianHeight)
}
