package promote

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/tsawler/bookpack/model"
)

// Emit walks a Section tree and renders it as a DocBook 5-shaped etree
// document, reusing the same etree construction idiom as docwriter's
// unified-document writer (C11) rather than hand-assembling XML strings.
func Emit(root *Section, meta model.Metadata) *etree.Document {
	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	book := out.CreateElement("book")
	if meta.Title != "" {
		book.CreateElement("title").SetText(meta.Title)
	}
	if meta.Author != "" {
		info := book.CreateElement("info")
		info.CreateElement("author").SetText(meta.Author)
	}

	emitBody(book, root.Body)
	for _, child := range root.Children {
		emitSection(book, child, "chapter")
	}

	return out
}

// emitSection writes one Section as a <chapter> (top level) or <section>
// (nested), recursing into its children. DocBook nests sub-sections as
// <section> regardless of depth; only the outermost level under <book>
// uses <chapter>.
func emitSection(parent *etree.Element, s *Section, tag string) {
	el := parent.CreateElement(tag)
	el.CreateAttr("id", anchorID(s.Title, s.Page))
	el.CreateElement("title").SetText(s.Title)

	emitBody(el, s.Body)

	for _, child := range s.Children {
		emitSection(el, child, "section")
	}
}

func emitBody(parent *etree.Element, body []BodyItem) {
	var paraRun []model.Paragraph
	flushParas := func() {
		if len(paraRun) == 0 {
			return
		}
		for _, entry := range PromoteLists(paraRun) {
			switch v := entry.(type) {
			case model.Paragraph:
				parent.CreateElement("para").SetText(v.Text())
			case List:
				emitList(parent, v)
			}
		}
		paraRun = nil
	}

	for _, item := range body {
		switch v := item.(type) {
		case model.Paragraph:
			paraRun = append(paraRun, v)
		case *model.MediaElement:
			flushParas()
			emitFigure(parent, v)
		case *model.Table:
			flushParas()
			emitTable(parent, v)
		case Bridgehead:
			flushParas()
			emitBridgehead(parent, v)
		}
	}
	flushParas()
}

// emitBridgehead writes an index alphabet divider as a DocBook <bridgehead>,
// the structural element for a sub-heading that doesn't open a nested
// <section> of its own.
func emitBridgehead(parent *etree.Element, b Bridgehead) {
	el := parent.CreateElement("bridgehead")
	el.CreateAttr("renderas", "sect3")
	el.SetText(b.Text)
}

func emitList(parent *etree.Element, l List) {
	tag := "itemizedlist"
	if l.Kind == ListOrdered {
		tag = "orderedlist"
	}
	el := parent.CreateElement(tag)
	for _, item := range l.Items {
		li := el.CreateElement("listitem")
		li.CreateElement("para").SetText(item.Text)
	}
}

func emitFigure(parent *etree.Element, m *model.MediaElement) {
	fig := parent.CreateElement("figure")
	fig.CreateAttr("id", m.ID)
	caption := sanitizeCaption(m.Caption)
	if caption != "" {
		fig.CreateElement("title").SetText(caption)
	}
	mediaobject := fig.CreateElement("mediaobject")
	imageobject := mediaobject.CreateElement("imageobject")
	imagedata := imageobject.CreateElement("imagedata")
	imagedata.CreateAttr("fileref", m.FileRef)
}

func emitTable(parent *etree.Element, t *model.Table) {
	tag := "table"
	caption := sanitizeCaption(t.Caption)
	if caption == "" {
		tag = "informaltable"
	}
	el := parent.CreateElement(tag)
	el.CreateAttr("id", t.ID)
	if caption != "" {
		el.CreateElement("title").SetText(caption)
	}

	tgroup := el.CreateElement("tgroup")
	tgroup.CreateAttr("cols", fmt.Sprintf("%d", t.ColCount()))
	tbody := tgroup.CreateElement("tbody")
	for _, row := range t.Rows {
		rowEl := tbody.CreateElement("row")
		for _, cell := range row {
			entry := rowEl.CreateElement("entry")
			if cell.ColSpan > 1 {
				entry.CreateAttr("namest", fmt.Sprintf("c%d", cell.Col))
				entry.CreateAttr("nameend", fmt.Sprintf("c%d", cell.Col+cell.ColSpan-1))
			}
			entry.SetText(cell.Text)
		}
	}
}

// anchorID builds a stable, URL-safe id for a section heading, following
// the same lowercase/hyphenate/strip-non-alnum pattern the teacher pack
// uses for heading anchors.
func anchorID(title string, page int) string {
	if title == "" {
		return fmt.Sprintf("section-p%d", page)
	}
	var out []byte
	prevHyphen := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, byte(r))
			prevHyphen = false
		case r >= 'A' && r <= 'Z':
			out = append(out, byte(r-'A'+'a'))
			prevHyphen = false
		default:
			if !prevHyphen && len(out) > 0 {
				out = append(out, '-')
				prevHyphen = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return fmt.Sprintf("section-p%d", page)
	}
	return string(out)
}
