package layout

import (
	"regexp"
	"sort"
	"unicode"

	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
)

// headingPatterns are the F-side exclusions for cross-page merge condition
// 4: a first paragraph matching any of these looks like the start of a new
// structural unit, not a continuation.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.`),
	regexp.MustCompile(`^[A-Z][a-z]+\s+\d+`),
	regexp.MustCompile(`^[IVXLCDM]+\.`),
}

var sentenceEndRunes = map[rune]bool{
	'.': true, '!': true, '?': true, ';': true, ':': true,
	'。': true, '！': true, '？': true,
}

// AssembleParagraphs groups a page's merged fragments by (ColID,
// ReadingBlock), in block order, and within each group starts a new
// paragraph on a vertical gap, a font family/size change, or a list-marker
// fragment. Fragments must already carry ColID/ReadingBlock (C6) and be
// page-local; cross-page merge is a separate pass (MergeAcrossPages) run
// once after every page has been assembled, per the specification's
// single-threaded-after-all-per-page-work-completes rule.
func AssembleParagraphs(pageNumber int, merged []model.MergedFragment, fonts *model.FontTable, opts config.Options) []model.Paragraph {
	groups := groupByColBlock(merged)

	medianHeight := medianFragmentHeight(merged)
	gapThreshold := opts.ParagraphGapMultiplier() * medianHeight

	var paragraphs []model.Paragraph
	for _, g := range groups {
		paragraphs = append(paragraphs, splitGroup(pageNumber, g, fonts, opts, gapThreshold)...)
	}
	return paragraphs
}

type group struct {
	colID        int
	readingBlock int
	fragments    []model.MergedFragment
}

func groupByColBlock(merged []model.MergedFragment) []group {
	ordered := make([]model.MergedFragment, len(merged))
	copy(ordered, merged)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ReadingBlock != ordered[j].ReadingBlock {
			return ordered[i].ReadingBlock < ordered[j].ReadingBlock
		}
		return ordered[i].RowIndex < ordered[j].RowIndex
	})

	var groups []group
	var current *group
	for _, m := range ordered {
		if current == nil || current.colID != m.ColID || current.readingBlock != m.ReadingBlock {
			if current != nil {
				groups = append(groups, *current)
			}
			current = &group{colID: m.ColID, readingBlock: m.ReadingBlock}
		}
		current.fragments = append(current.fragments, m)
	}
	if current != nil {
		groups = append(groups, *current)
	}
	return groups
}

func splitGroup(pageNumber int, g group, fonts *model.FontTable, opts config.Options, gapThreshold float64) []model.Paragraph {
	var paragraphs []model.Paragraph
	var current []model.MergedFragment

	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraphs = append(paragraphs, model.Paragraph{
			ColID:        g.colID,
			ReadingBlock: g.readingBlock,
			Page:         pageNumber,
			Fragments:    current,
		})
		current = nil
	}

	var prev *model.MergedFragment
	for i := range g.fragments {
		f := g.fragments[i]

		if prev != nil && startsNewParagraph(*prev, f, fonts, opts, gapThreshold) {
			flush()
		}
		current = append(current, f)
		prevCopy := f
		prev = &prevCopy
	}
	flush()
	return paragraphs
}

func startsNewParagraph(prev, f model.MergedFragment, fonts *model.FontTable, opts config.Options, gapThreshold float64) bool {
	gap := f.BBox.Top() - prev.BBox.Bottom()
	if gap > gapThreshold {
		return true
	}

	prevEntry, prevOK := fonts.Lookup(prev.FontID)
	curEntry, curOK := fonts.Lookup(f.FontID)
	if prevOK && curOK {
		if prevEntry.Family != curEntry.Family {
			return true
		}
		if absFloat(prevEntry.Size-curEntry.Size) > 2 {
			return true
		}
	}

	if isListMarkerFragment(f, opts) {
		return true
	}

	return false
}

func isListMarkerFragment(f model.MergedFragment, opts config.Options) bool {
	runes := []rune(f.Text)
	if len(runes) == 0 {
		return false
	}
	return opts.IsListMarker(runes[0])
}

func medianFragmentHeight(merged []model.MergedFragment) float64 {
	if len(merged) == 0 {
		return 1
	}
	heights := make([]float64, len(merged))
	for i, m := range merged {
		heights[i] = m.BBox.Height()
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

// MergeAcrossPages runs the cross-page paragraph merge pass once, after
// every page's own AssembleParagraphs has run. It must be invoked single-
// threaded, after all per-page work completes, and mutates pages in place:
// on a qualifying merge, F's fragments are appended to L, F is removed from
// P_{n+1}, and L is marked ContinuesToNext. ContinuedFromPrev is not set,
// since F no longer exists as a paragraph of its own.
func MergeAcrossPages(pages []*model.Page, fonts *model.FontTable) {
	for n := 0; n < len(pages)-1; n++ {
		pn, pn1 := pages[n], pages[n+1]
		if len(pn.Paragraphs) == 0 || len(pn1.Paragraphs) == 0 {
			continue
		}

		lastIdx := len(pn.Paragraphs) - 1
		l := pn.Paragraphs[lastIdx]
		f := pn1.Paragraphs[0]

		if !qualifiesForMerge(l, f, fonts) {
			continue
		}

		merged := l
		merged.Fragments = append(append([]model.MergedFragment{}, l.Fragments...), f.Fragments...)
		merged.ContinuesToNext = false
		pn.Paragraphs[lastIdx] = merged
		pn.Paragraphs[lastIdx].ContinuesToNext = true

		pn1.Paragraphs = pn1.Paragraphs[1:]
		if len(pn1.Paragraphs) == 0 {
			continue
		}
	}
}

func qualifiesForMerge(l, f model.Paragraph, fonts *model.FontTable) bool {
	if l.ColID != f.ColID || l.ReadingBlock != f.ReadingBlock {
		return false
	}
	if len(l.Fragments) == 0 || len(f.Fragments) == 0 {
		return false
	}

	lLast := l.Fragments[len(l.Fragments)-1]
	fFirst := f.Fragments[0]

	lEntry, lOK := fonts.Lookup(lLast.FontID)
	fEntry, fOK := fonts.Lookup(fFirst.FontID)
	if !lOK || !fOK {
		return false
	}
	if lEntry.Family != fEntry.Family {
		return false
	}
	if absFloat(lEntry.Size-fEntry.Size) >= 2 {
		return false
	}

	if endsWithSentenceTerminator(l.Text()) {
		return false
	}
	if matchesHeadingPattern(f.Text()) {
		return false
	}
	if lEntry.IsBold() && !fEntry.IsBold() {
		return false
	}

	return true
}

func endsWithSentenceTerminator(s string) bool {
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			continue
		}
		return sentenceEndRunes[runes[i]]
	}
	return false
}

func matchesHeadingPattern(s string) bool {
	for _, re := range headingPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	runes := []rune(s)
	if (len(runes) == 1 || (len(runes) == 2 && runes[1] == '.')) && unicode.IsUpper(runes[0]) {
		return true // single-letter alphabetic heading ("A", "B.")
	}
	if len(runes) > 0 && isBulletGlyph(runes[0]) {
		return true
	}
	return false
}

func isBulletGlyph(r rune) bool {
	switch r {
	case '•', '◦', '▪', '●', '○', '■', '□':
		return true
	}
	return false
}
