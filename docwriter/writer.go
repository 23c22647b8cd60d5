// Package docwriter emits the reading-ordered unified document (C11): one
// page list with each page's texts, media, tables, and a document-level
// font table, all in HTML-space. Built on github.com/beevik/etree, in the
// teacher pack's idiom of constructing and serializing an etree.Document
// rather than hand-assembling XML strings.
package docwriter

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/model"
)

// Write builds the unified document for doc and returns the etree.Document
// ready for serialization. It logs the per-document counters (§4.11):
// pages, paragraphs, media emitted, tables emitted, coordinate
// normalizations skipped.
func Write(doc *model.Document, summary *bookerr.Summary, log *zap.Logger) *etree.Document {
	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := out.CreateElement("book")
	writeMetadata(root, doc.Metadata)
	writeFontTable(root, doc.Fonts)

	pages := root.CreateElement("pages")
	sorted := make([]*model.Page, len(doc.Pages))
	copy(sorted, doc.Pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	paragraphCount := 0
	mediaCount := 0
	tableCount := 0

	for _, page := range sorted {
		pageEl := pages.CreateElement("page")
		pageEl.CreateAttr("number", fmt.Sprintf("%d", page.Number))
		pageEl.CreateAttr("html_width", fmt.Sprintf("%g", page.HTMLWidth))
		pageEl.CreateAttr("html_height", fmt.Sprintf("%g", page.HTMLHeight))

		textsEl := pageEl.CreateElement("texts")
		for _, para := range page.Paragraphs {
			writeParagraph(textsEl, para)
			paragraphCount++
		}

		mediaEl := pageEl.CreateElement("media")
		for _, m := range page.Media {
			writeMedia(mediaEl, m)
			mediaCount++
		}

		tablesEl := pageEl.CreateElement("tables")
		for _, t := range page.Tables {
			writeTable(tablesEl, t)
			tableCount++
		}
	}

	log.Info("unified document written",
		zap.Int("pages", len(sorted)),
		zap.Int("paragraphs", paragraphCount),
		zap.Int("media", mediaCount),
		zap.Int("tables", tableCount),
		zap.Int("coord_norm_skipped", summary.CoordNormSkipped),
	)

	summary.ParagraphsEmitted += paragraphCount

	return out
}

func writeMetadata(root *etree.Element, meta model.Metadata) {
	el := root.CreateElement("metadata")
	if meta.Title != "" {
		el.CreateElement("title").SetText(meta.Title)
	}
	if meta.Author != "" {
		el.CreateElement("author").SetText(meta.Author)
	}
	if meta.Subject != "" {
		el.CreateElement("subject").SetText(meta.Subject)
	}
}

func writeFontTable(root *etree.Element, fonts *model.FontTable) {
	fontsEl := root.CreateElement("fonts")
	for _, f := range fonts.All() {
		fe := fontsEl.CreateElement("font")
		fe.CreateAttr("id", f.ID)
		fe.CreateAttr("size", fmt.Sprintf("%g", f.Size))
		fe.CreateAttr("family", f.Family)
		if f.IsBold() {
			fe.CreateAttr("bold", "1")
		}
		if f.IsItalic() {
			fe.CreateAttr("italic", "1")
		}
	}
}

func writeParagraph(parent *etree.Element, para model.Paragraph) {
	pEl := parent.CreateElement("paragraph")
	pEl.CreateAttr("col_id", fmt.Sprintf("%d", para.ColID))
	pEl.CreateAttr("reading_block", fmt.Sprintf("%d", para.ReadingBlock))
	if para.ContinuedFromPrev {
		pEl.CreateAttr("continued_from_prev", "1")
	}
	if para.ContinuesToNext {
		pEl.CreateAttr("continues_to_next", "1")
	}

	for _, f := range para.Fragments {
		fEl := pEl.CreateElement("fragment")
		fEl.CreateAttr("font", f.FontID)
		fEl.CreateAttr("reading_order", fmt.Sprintf("%g", f.ReadingOrder))
		writeRect(fEl, f.BBox)
		fEl.SetText(f.Text)

		if len(f.Children) > 1 {
			childrenEl := fEl.CreateElement("children")
			for _, c := range f.Children {
				cEl := childrenEl.CreateElement("child")
				cEl.CreateAttr("font", c.FontID)
				if c.IsScript {
					cEl.CreateAttr("script", c.ScriptType.String())
				}
				writeRect(cEl, c.BBox)
				cEl.SetText(c.Text)
			}
		}
	}
}

func writeMedia(parent *etree.Element, m *model.MediaElement) {
	el := parent.CreateElement("media_item")
	el.CreateAttr("id", m.ID)
	el.CreateAttr("kind", m.Kind.String())
	el.CreateAttr("file", m.FileRef)
	el.CreateAttr("reading_order", fmt.Sprintf("%g", m.ReadingOrder))
	if m.IsFullPageDecorative {
		el.CreateAttr("full_page_decorative", "1")
	}
	if m.IsComplexShape {
		el.CreateAttr("complex_shape", "1")
	}
	if m.Caption != "" {
		el.CreateElement("caption").SetText(m.Caption)
	}
	writeRect(el, m.Rect)
}

func writeTable(parent *etree.Element, t *model.Table) {
	el := parent.CreateElement("table_item")
	el.CreateAttr("id", t.ID)
	el.CreateAttr("reading_order", fmt.Sprintf("%g", t.ReadingOrder))
	if t.HasCaption() {
		el.CreateElement("caption").SetText(t.Caption)
	}
	writeRect(el, t.Rect)

	rowsEl := el.CreateElement("rows")
	for _, row := range t.Rows {
		rowEl := rowsEl.CreateElement("row")
		for _, cell := range row {
			cellEl := rowEl.CreateElement("cell")
			cellEl.CreateAttr("row", fmt.Sprintf("%d", cell.Row))
			cellEl.CreateAttr("col", fmt.Sprintf("%d", cell.Col))
			if cell.RowSpan > 1 {
				cellEl.CreateAttr("rowspan", fmt.Sprintf("%d", cell.RowSpan))
			}
			if cell.ColSpan > 1 {
				cellEl.CreateAttr("colspan", fmt.Sprintf("%d", cell.ColSpan))
			}
			cellEl.SetText(cell.Text)
		}
	}
}

func writeRect(el *etree.Element, rect model.BBox) {
	el.CreateAttr("x1", fmt.Sprintf("%g", rect.X1))
	el.CreateAttr("y1", fmt.Sprintf("%g", rect.Y1))
	el.CreateAttr("x2", fmt.Sprintf("%g", rect.X2))
	el.CreateAttr("y2", fmt.Sprintf("%g", rect.Y2))
}
