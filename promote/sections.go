package promote

import (
	"sort"

	"github.com/tsawler/bookpack/model"
)

// maxHeadingMergeGapRatio bounds the vertical gap (as a multiple of font
// size) within which two consecutive heading-role paragraphs are treated as
// one multi-line heading rather than two separate sections.
const maxHeadingMergeGapRatio = 2.0

// BodyItem is one piece of section body content: a plain paragraph, a
// promoted List, a figure (MediaElement), a Table, or a Bridgehead.
// docbook.go switches on the concrete type when emitting.
type BodyItem interface{}

// Bridgehead is an index section's alphabet divider ("A", "B", ...),
// emitted as a structural <bridgehead> rather than an ordinary <para> so it
// reads as a sub-heading instead of a one-letter sentence.
type Bridgehead struct {
	Text string
	Page int
}

// Section is a chapter or nested section in the promoted document tree.
// The root Section (Level 0) has no title of its own; its Children are the
// book's top-level chapters.
type Section struct {
	Level    int
	Title    string
	Page     int
	BBox     model.BBox
	Body     []BodyItem
	Children []*Section
}

// BuildSections walks every page's paragraphs in reading order and nests
// them into a Section tree using the same open/close stack pattern as the
// teacher's heading outline builder: a level-L heading closes every open
// section at level >= L, then opens a new one nested under the nearest
// still-open section at a lower level. Paragraphs without a heading role
// become body content of whichever section is currently open (or the root,
// before any heading has been seen). Within [indexFirst, indexLast], a
// paragraph that is a lone alphabet bridgehead becomes a Bridgehead body
// item instead of an ordinary paragraph (§4.12 index handling).
func BuildSections(doc *model.Document, roles map[string]FontRole, tocFirst, tocLast int, skipTOC bool, indexFirst, indexLast int, hasIndex bool) *Section {
	root := &Section{Level: 0}
	stack := []*Section{root}

	var pendingHeading *Section

	flushHeading := func() {
		if pendingHeading == nil {
			return
		}
		for len(stack) > 0 && stack[len(stack)-1].Level >= pendingHeading.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, pendingHeading)
		stack = append(stack, pendingHeading)
		pendingHeading = nil
	}

	for _, page := range doc.Pages {
		if skipTOC && page.Number >= tocFirst && page.Number <= tocLast {
			continue
		}
		inIndex := hasIndex && page.Number >= indexFirst && page.Number <= indexLast

		for _, item := range pageItemsInOrder(page) {
			para, isPara := item.(model.Paragraph)
			if !isPara {
				flushHeading()
				top := stack[len(stack)-1]
				top.Body = append(top.Body, item)
				continue
			}

			if inIndex && IsAlphabetBridgehead(para.Text()) {
				flushHeading()
				top := stack[len(stack)-1]
				top.Body = append(top.Body, Bridgehead{Text: para.Text(), Page: page.Number})
				continue
			}

			role := paragraphRole(para, roles)
			level := role.HeadingLevel()

			if level == 0 {
				flushHeading()
				top := stack[len(stack)-1]
				top.Body = append(top.Body, para)
				continue
			}

			if pendingHeading != nil && pendingHeading.Level == level &&
				headingContinuesOnto(pendingHeading, para, doc) {
				pendingHeading.Title += " " + para.Text()
				pendingHeading.BBox = pendingHeading.BBox.Union(para.BBox())
				continue
			}

			flushHeading()
			pendingHeading = &Section{
				Level: level,
				Title: para.Text(),
				Page:  page.Number,
				BBox:  para.BBox(),
			}
		}
	}
	flushHeading()

	return root
}

// orderedItem pairs a page item (paragraph, media, or table) with the
// reading_order value used to interleave them.
type orderedItem struct {
	order float64
	item  interface{}
}

// pageItemsInOrder merges a page's paragraphs, media, and tables into one
// slice sorted by ReadingOrder so figures and tables interleave with the
// text around them instead of trailing behind each page's paragraphs.
func pageItemsInOrder(page *model.Page) []interface{} {
	var items []orderedItem
	for _, para := range page.Paragraphs {
		order := 0.0
		if len(para.Fragments) > 0 {
			order = para.Fragments[0].ReadingOrder
		}
		items = append(items, orderedItem{order, para})
	}
	for _, m := range page.Media {
		items = append(items, orderedItem{m.ReadingOrder, m})
	}
	for _, t := range page.Tables {
		items = append(items, orderedItem{t.ReadingOrder, t})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].order < items[j].order })

	out := make([]interface{}, len(items))
	for i, o := range items {
		out[i] = o.item
	}
	return out
}

func paragraphRole(para model.Paragraph, roles map[string]FontRole) FontRole {
	if len(para.Fragments) == 0 {
		return RoleUnknown
	}
	return roles[para.Fragments[0].FontID]
}

// headingContinuesOnto decides whether para is a continuation line of the
// same multi-line heading as prev rather than the start of the next
// section: same font size/family (already guaranteed by identical role)
// and a vertical gap under 2x font size.
func headingContinuesOnto(prev *Section, para model.Paragraph, doc *model.Document) bool {
	if len(para.Fragments) == 0 {
		return false
	}
	entry, ok := doc.Fonts.Lookup(para.Fragments[0].FontID)
	if !ok || entry.Size <= 0 {
		return false
	}
	gap := para.BBox().Top() - prev.BBox.Bottom()
	return gap >= 0 && gap < maxHeadingMergeGapRatio*entry.Size
}
