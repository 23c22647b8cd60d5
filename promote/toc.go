package promote

import (
	"regexp"
	"sort"

	"github.com/tsawler/bookpack/model"
)

// tocLinePattern matches a table-of-contents entry: text ending in a run of
// dot leaders or wide whitespace followed by a page number.
var tocLinePattern = regexp.MustCompile(`(\.{2,}\s*|\s{3,})\d{1,4}\s*$`)

// tocPageThreshold is the minimum fraction of a page's paragraphs that must
// look like TOC lines for the page to count as a TOC candidate.
const tocPageThreshold = 0.5

// DetectTOCWindow finds the longest contiguous run of pages whose
// paragraphs are mostly TOC-shaped lines, and returns its first/last page
// numbers. A table of contents is always a small number of adjacent pages
// near the front of a book, never scattered — scanning for the longest
// contiguous run rather than flagging individual pages avoids mistaking an
// isolated dot-leadered paragraph elsewhere (e.g. a price list) for a TOC.
func DetectTOCWindow(doc *model.Document) (firstPage, lastPage int, ok bool) {
	candidate := map[int]bool{}
	for _, page := range doc.Pages {
		if isTOCPage(page) {
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

func isTOCPage(page *model.Page) bool {
	if len(page.Paragraphs) == 0 {
		return false
	}
	matches := 0
	for _, para := range page.Paragraphs {
		if tocLinePattern.MatchString(para.Text()) {
			matches++
		}
	}
	return float64(matches)/float64(len(page.Paragraphs)) >= tocPageThreshold
}
