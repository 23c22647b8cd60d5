package promote

import (
	"regexp"
	"sort"
	"unicode"

	"github.com/tsawler/bookpack/model"
)

// IsAlphabetBridgehead reports whether text is a single uppercase letter on
// its own line — an index section's alphabet bridgehead ("A", "B", ...
// separating runs of entries). These must survive whatever running-header
// or roman-numeral page-artifact filtering the caller applies elsewhere:
// a lone capital letter is structurally meaningful inside an index, not
// decorative page furniture.
func IsAlphabetBridgehead(text string) bool {
	runes := []rune(text)
	if len(runes) != 1 {
		return false
	}
	return unicode.IsUpper(runes[0]) && unicode.IsLetter(runes[0])
}

// indexEntryPattern matches a back-of-book index line: a term followed by
// one or more comma-separated page references, e.g. "binding, 12, 45-47".
var indexEntryPattern = regexp.MustCompile(`,?\s*\d{1,4}(-\d{1,4})?(,\s*\d{1,4}(-\d{1,4})?)*\s*$`)

// indexPageThreshold is the minimum fraction of a page's paragraphs that
// must look like index entries or alphabet bridgeheads for the page to
// count as an index candidate.
const indexPageThreshold = 0.5

// DetectIndexWindow finds the longest contiguous run of pages whose
// paragraphs are mostly index-shaped (entry-plus-page-numbers lines and
// alphabet bridgeheads), the same longest-contiguous-run approach
// DetectTOCWindow uses for the table of contents: a back-of-book index is
// always a small block of adjacent pages, never scattered, so scanning for
// the longest run avoids mistaking an isolated numbered list elsewhere for
// an index.
func DetectIndexWindow(doc *model.Document) (firstPage, lastPage int, ok bool) {
	candidate := map[int]bool{}
	for _, page := range doc.Pages {
		if isIndexPage(page) {
			candidate[page.Number] = true
		}
	}
	if len(candidate) == 0 {
		return 0, 0, false
	}

	pages := make([]int, 0, len(candidate))
	for p := range candidate {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	bestStart, bestLen := pages[0], 1
	runStart, runLen := pages[0], 1
	for i := 1; i < len(pages); i++ {
		if pages[i] == pages[i-1]+1 {
			runLen++
		} else {
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
			runStart, runLen = pages[i], 1
		}
	}
	if runLen > bestLen {
		bestStart, bestLen = runStart, runLen
	}

	return bestStart, bestStart + bestLen - 1, true
}

func isIndexPage(page *model.Page) bool {
	if len(page.Paragraphs) == 0 {
		return false
	}
	matches := 0
	for _, para := range page.Paragraphs {
		text := para.Text()
		if IsAlphabetBridgehead(text) || indexEntryPattern.MatchString(text) {
			matches++
		}
	}
	return float64(matches)/float64(len(page.Paragraphs)) >= indexPageThreshold
}
