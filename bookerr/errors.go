// Package bookerr implements the error taxonomy and non-fatal diagnostic
// aggregation used throughout the pipeline (see the teacher's own
// warnings-alongside-result convention on Extractor's terminal methods).
// Element- and page-scoped failures are recorded here and never bubble past
// their scope; only document-level errors abort a run.
package bookerr

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Kind identifies one of the taxonomy's error classes.
type Kind string

const (
	// Element/fragment-scoped: logged and continued, never abort the page.
	KindFontLookupMissing            Kind = "FontLookupMissing"
	KindFragmentDropped               Kind = "FragmentDropped"
	KindCoordinateNormalizationSkipped Kind = "CoordinateNormalizationSkipped"

	// Page-scoped: downgrade the page to whichever side remains available.
	KindPageTimeout       Kind = "PageTimeout"
	KindPageRenderFailed  Kind = "PageRenderFailed"
	KindTextExtractorEmpty Kind = "TextExtractorEmpty"

	// Aggregated, not silent: always surfaced in the run summary.
	KindTableFilteredNoCaption Kind = "TableFilteredNoCaption"

	// Document-scoped: fatal.
	KindNoExtractableContent Kind = "NoExtractableContent"

	// Non-fatal infrastructure failure.
	KindReferenceMapIOError Kind = "ReferenceMapIOError"

	// Element-scoped: the media bundle keeps the element's geometry and
	// caption, but no rendered sidecar file was produced for it.
	KindMediaSidecarFailed Kind = "MediaSidecarFailed"
)

// Sentinel errors for use with errors.Is at the document-fatal boundary.
var (
	ErrNoExtractableContent = errors.New("bookerr: no extractable content in document")
)

// Warning is one non-fatal diagnostic raised during conversion. It mirrors
// the teacher's pattern of returning a slice of warnings alongside every
// terminal result, formalized here as a typed, aggregable record instead of
// a bare string.
type Warning struct {
	Kind   Kind
	Page   int    // 0 when not page-scoped
	Detail string
}

func (w Warning) Error() string {
	if w.Page > 0 {
		return fmt.Sprintf("%s (page %d): %s", w.Kind, w.Page, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

// Summary aggregates every warning raised during a run, plus the counters
// §7 mandates must never be silently dropped (tables filtered, pages
// downgraded, coordinate normalizations skipped).
type Summary struct {
	Warnings []Warning

	PagesProcessed    int
	PagesDowngraded   int
	ParagraphsEmitted int
	MediaEmitted      int
	TablesDetected    int
	TablesWritten     int
	TablesFiltered    int
	CoordNormSkipped  int

	// TablesFilteredPerPage records the per-page filtered count so the run
	// summary can answer "how many on page N" as well as the aggregate.
	TablesFilteredPerPage map[int]int
}

// NewSummary returns an initialized, empty Summary.
func NewSummary() *Summary {
	return &Summary{TablesFilteredPerPage: make(map[int]int)}
}

// Add records a warning and updates the matching counter where one exists.
func (s *Summary) Add(w Warning) {
	s.Warnings = append(s.Warnings, w)
	switch w.Kind {
	case KindTableFilteredNoCaption:
		s.TablesFiltered++
		if w.Page > 0 {
			s.TablesFilteredPerPage[w.Page]++
		}
	case KindCoordinateNormalizationSkipped:
		s.CoordNormSkipped++
	case KindPageTimeout, KindPageRenderFailed, KindTextExtractorEmpty:
		s.PagesDowngraded++
	}
}

// Fontf records a FontLookupMissing warning.
func (s *Summary) Fontf(page int, format string, args ...any) {
	s.Add(Warning{Kind: KindFontLookupMissing, Page: page, Detail: fmt.Sprintf(format, args...)})
}

// Fragmentf records a FragmentDropped warning.
func (s *Summary) Fragmentf(page int, format string, args ...any) {
	s.Add(Warning{Kind: KindFragmentDropped, Page: page, Detail: fmt.Sprintf(format, args...)})
}

// CoordSkippedf records a CoordinateNormalizationSkipped warning.
func (s *Summary) CoordSkippedf(page int, format string, args ...any) {
	s.Add(Warning{Kind: KindCoordinateNormalizationSkipped, Page: page, Detail: fmt.Sprintf(format, args...)})
}

// TableFilteredf records a TableFilteredNoCaption warning — always
// aggregated, never silently dropped, per §7.
func (s *Summary) TableFilteredf(page int, format string, args ...any) {
	s.Add(Warning{Kind: KindTableFilteredNoCaption, Page: page, Detail: fmt.Sprintf(format, args...)})
}

// RefMapIOErrorf records a non-fatal reference-map persistence failure.
func (s *Summary) RefMapIOErrorf(format string, args ...any) {
	s.Add(Warning{Kind: KindReferenceMapIOError, Detail: fmt.Sprintf(format, args...)})
}

// MediaSidecarFailedf records a non-fatal sidecar rendering failure.
func (s *Summary) MediaSidecarFailedf(page int, format string, args ...any) {
	s.Add(Warning{Kind: KindMediaSidecarFailed, Page: page, Detail: fmt.Sprintf(format, args...)})
}

// AsError combines every warning whose Kind is in kinds into one error via
// multierr, for a caller that wants a strict run to fail on conditions this
// package otherwise treats as non-fatal (e.g. any filtered table). Returns
// nil when nothing matched. With no kinds given, every warning is combined.
func (s *Summary) AsError(kinds ...Kind) error {
	match := func(Kind) bool { return true }
	if len(kinds) > 0 {
		set := make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			set[k] = true
		}
		match = func(k Kind) bool { return set[k] }
	}

	var errs error
	for _, w := range s.Warnings {
		if match(w.Kind) {
			errs = multierr.Append(errs, w)
		}
	}
	return errs
}

// Merge folds another summary's warnings and counters into s, used when
// combining the per-worker summaries produced by the page worker pool (§5)
// into one document-level summary.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	s.Warnings = append(s.Warnings, other.Warnings...)
	s.PagesProcessed += other.PagesProcessed
	s.PagesDowngraded += other.PagesDowngraded
	s.ParagraphsEmitted += other.ParagraphsEmitted
	s.MediaEmitted += other.MediaEmitted
	s.TablesDetected += other.TablesDetected
	s.TablesWritten += other.TablesWritten
	s.TablesFiltered += other.TablesFiltered
	s.CoordNormSkipped += other.CoordNormSkipped
	for page, n := range other.TablesFilteredPerPage {
		s.TablesFilteredPerPage[page] += n
	}
}
