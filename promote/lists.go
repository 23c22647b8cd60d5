package promote

import (
	"regexp"
	"strings"

	"github.com/tsawler/bookpack/model"
)

// ListKind distinguishes the DocBook list element a promoted list emits as.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListOrdered
)

// indentTolerance is the ±15pt indentation tolerance for grouping items into
// the same list, per §4.12's list-promotion rule.
const indentTolerance = 15.0

// minListItems is the minimum run of consistent-indentation marker
// paragraphs required before promoting a list; a single "A." or "I." line is
// left as an ordinary paragraph rather than a one-item list.
const minListItems = 2

var (
	numberedMarker = regexp.MustCompile(`^(\d+)[.\)]\s+`)
	letterMarker   = regexp.MustCompile(`^([a-zA-Z])[.\)]\s+`)
	romanMarker    = regexp.MustCompile(`^([ivxlcdmIVXLCDM]+)[.\)]\s+`)
	bulletGlyphs   = "•●○◦◉■□▪▫‣⁃→▶►▸➤➜-*"

	// nameLike matches a capital-letter initial followed by a capitalized
	// word ("A. Smith"), which is a person's name rather than a lettered
	// list marker; see isExcludedMarker.
	nameLike = regexp.MustCompile(`^[A-Z]\.\s+[A-Z][a-z]+$`)
)

// ListItem is one promoted list entry.
type ListItem struct {
	Marker string
	Text   string
	BBox   model.BBox
}

// List is a run of consecutive marker paragraphs promoted into a single
// DocBook list.
type List struct {
	Kind  ListKind
	Items []ListItem
}

func detectMarker(text string) (kind ListKind, marker, rest string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ListNone, "", ""
	}

	runes := []rune(trimmed)
	if strings.ContainsRune(bulletGlyphs, runes[0]) {
		return ListBullet, string(runes[0]), strings.TrimSpace(string(runes[1:]))
	}

	if m := numberedMarker.FindStringSubmatchIndex(trimmed); m != nil {
		return ListOrdered, trimmed[m[0]:m[1]], trimmed[m[1]:]
	}
	if m := romanMarker.FindStringSubmatchIndex(trimmed); m != nil {
		return ListOrdered, trimmed[m[0]:m[1]], trimmed[m[1]:]
	}
	if m := letterMarker.FindStringSubmatchIndex(trimmed); m != nil {
		return ListOrdered, trimmed[m[0]:m[1]], trimmed[m[1]:]
	}

	return ListNone, "", ""
}

// PromoteLists scans a page's paragraphs for runs of ≥2 consecutive,
// similarly-indented marker paragraphs and groups each run into a List.
// Paragraphs not absorbed into a list are returned unchanged in order,
// interleaved with List values at their original position so callers can
// emit a single ordered pass over the page body.
func PromoteLists(paragraphs []model.Paragraph) []interface{} {
	var out []interface{}
	i := 0
	for i < len(paragraphs) {
		kind, marker, rest := detectMarker(paragraphs[i].Text())
		if kind == ListNone || isExcludedMarker(marker, rest) {
			out = append(out, paragraphs[i])
			i++
			continue
		}

		runStart := i
		baseIndent := paragraphs[i].BBox().Left()
		items := []ListItem{{Marker: marker, Text: rest, BBox: paragraphs[i].BBox()}}
		j := i + 1
		for j < len(paragraphs) {
			k2, m2, r2 := detectMarker(paragraphs[j].Text())
			if k2 != kind || isExcludedMarker(m2, r2) {
				break
			}
			if abs(paragraphs[j].BBox().Left()-baseIndent) > indentTolerance {
				break
			}
			items = append(items, ListItem{Marker: m2, Text: r2, BBox: paragraphs[j].BBox()})
			j++
		}

		if len(items) >= minListItems {
			out = append(out, List{Kind: kind, Items: items})
			i = j
			continue
		}

		// Isolated marker paragraph: not a list, keep as a normal paragraph.
		out = append(out, paragraphs[runStart])
		i = runStart + 1
	}
	return out
}

// isExcludedMarker rejects marker matches that look like a name
// ("A. Smith") rather than a genuine list item. It does not test for
// numbered section headings; heading-role paragraphs become section titles
// in sections.go and never reach list promotion.
func isExcludedMarker(marker, rest string) bool {
	if marker == "" {
		return false
	}
	full := marker + " " + rest
	return nameLike.MatchString(full)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
