package layout

import (
	"fmt"

	"github.com/tsawler/bookpack/model"
)

// adjacentGapThreshold is the maximum horizontal gap, as a fraction of
// fragment height, below which two same-font fragments on a row are
// concatenated without an inserted space (mirrors the "smart spacing"
// word/character heuristic in the text extractor this package's row
// grouping is grounded on).
const adjacentGapThreshold = 0.3

// MergeRow concatenates horizontally-adjacent fragments within one row,
// left to right, into merged fragments. A new merged fragment starts
// whenever the font id, column or reading block changes; the fragments'
// own Bold/Italic hints are not compared. Within a run, a horizontal gap
// wider than adjacentGapThreshold times the fragment height inserts one
// space but does not start a new merged fragment.
// Fragments marked as scripts are excluded here — they are attached to
// their parent separately by SpliceScripts, since a script's row (if any)
// is typically not its parent's row.
func MergeRow(row Row) []model.MergedFragment {
	var merged []model.MergedFragment
	var current *model.MergedFragment

	for _, f := range row.Fragments {
		if f.IsScript {
			continue
		}

		if current != nil && sameRun(current, f) {
			gap := f.Left - current.BBox.Right()
			sep := ""
			if gap > f.Height*adjacentGapThreshold {
				sep = " "
			}
			current.Text += sep + f.Text
			current.BBox = current.BBox.Union(f.BBox())
			current.Children = append(current.Children, toRef(f))
			continue
		}

		if current != nil {
			merged = append(merged, *current)
		}
		next := model.MergedFragment{
			Text:         f.Text,
			BBox:         f.BBox(),
			FontID:       f.FontID,
			ColID:        f.ColID,
			ReadingBlock: f.ReadingBlock,
			Children:     []model.FragmentRef{toRef(f)},
		}
		current = &next
	}
	if current != nil {
		merged = append(merged, *current)
	}
	return merged
}

func sameRun(current *model.MergedFragment, f model.Fragment) bool {
	return current.FontID == f.FontID &&
		current.ColID == f.ColID &&
		current.ReadingBlock == f.ReadingBlock
}

func toRef(f model.Fragment) model.FragmentRef {
	return model.FragmentRef{
		SourceIndex: f.Index,
		Text:        f.Text,
		BBox:        f.BBox(),
		FontID:      f.FontID,
		IsScript:    f.IsScript,
		ScriptType:  f.ScriptType,
	}
}

// MergePage runs row-internal merge (C5) across every row of a page and
// then splices marked scripts into their parents (script cross-row merge),
// returning the page's flat list of merged fragments in row order.
func MergePage(rows []Row, fragments []model.Fragment) []model.MergedFragment {
	var merged []model.MergedFragment
	for rowIdx, row := range rows {
		for _, m := range MergeRow(row) {
			m.RowIndex = rowIdx
			merged = append(merged, m)
		}
	}
	SpliceScripts(merged, fragments)
	return merged
}

// SpliceScripts attaches every script fragment's text to its parent's
// merged fragment with a typographic marker: "^text" for superscript,
// "_text" for subscript. The script fragment itself is appended to the
// parent merged fragment's Children, retaining its own size and rect from
// the font table and position data — the fragment-tracking invariant the
// specification calls out, since a script's font size always differs from
// its parent's.
func SpliceScripts(merged []model.MergedFragment, fragments []model.Fragment) {
	bySource := make(map[int]*model.MergedFragment, len(merged))
	for i := range merged {
		for _, c := range merged[i].Children {
			bySource[c.SourceIndex] = &merged[i]
		}
	}

	for _, f := range fragments {
		if !f.IsScript {
			continue
		}
		parent, ok := bySource[f.ScriptParentIdx]
		if !ok {
			continue
		}

		marker := "^"
		if f.ScriptType == model.Subscript {
			marker = "_"
		}
		parent.Text += fmt.Sprintf("%s%s", marker, f.Text)
		parent.BBox = parent.BBox.Union(f.BBox())
		parent.Children = append(parent.Children, toRef(f))
	}
}
