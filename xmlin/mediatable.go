package xmlin

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/tsawler/bookpack/model"
)

// MediaCandidate is one `<media>` element from the media/table document,
// still in PDF-native space — the fusion engine (C10) transforms Rect into
// HTML-space before it is ever compared against text fragments.
type MediaCandidate struct {
	ID   string
	Kind model.MediaKind
	File string
	Rect model.BBox

	// Primitive counts are populated for Vector candidates only, from the
	// drawing-operator tally the external extractor reports per region; they
	// drive the complex-shape classification in the media package (C8).
	Curves         int
	NonRectLines   int
	Quads          int
	TextBlockCount int // number of text blocks this region overlays
}

// TableCandidate is one `<table>` element with its cell grid, produced by
// the external table-geometry detector and still awaiting caption binding
// (C9).
type TableCandidate struct {
	ID   string
	Rect model.BBox
	Rows [][]model.Cell
}

// MediaTablePage is one `<page>` element from the media/table document.
type MediaTablePage struct {
	Number int
	Width  float64
	Height float64
	Media  []MediaCandidate
	Tables []TableCandidate
}

// MediaTableDoc is the parsed media/table document.
type MediaTableDoc struct {
	Pages []MediaTablePage
}

// ParseMediaTable reads the media/table extractor's strict XML: per-page
// `<page index width height>` with `<media id type file x1 y1 x2 y2 .../>`
// and `<table id>...<rows><row><cell col row><chunk>` elements. Unlike
// ParseTextLayout, malformed input here fails the parse outright — this
// side of the input is documented as strict XML, so tolerating malformed
// markup would only hide a genuine upstream bug.
func ParseMediaTable(r io.Reader) (*MediaTableDoc, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("xmlin: media/table parse error: %w", err)
	}

	root := tree.Root()
	if root == nil {
		return nil, fmt.Errorf("xmlin: media/table document has no root element")
	}

	doc := &MediaTableDoc{}
	for _, pageEl := range root.SelectElements("page") {
		page := MediaTablePage{
			Number: elemIntAttr(pageEl, "index", len(doc.Pages)+1),
			Width:  elemFloatAttr(pageEl, "width", 0),
			Height: elemFloatAttr(pageEl, "height", 0),
		}

		for _, mediaEl := range pageEl.SelectElements("media") {
			kind := model.Raster
			if strings.EqualFold(mediaEl.SelectAttrValue("type", "raster"), "vector") {
				kind = model.Vector
			}
			page.Media = append(page.Media, MediaCandidate{
				ID:   mediaEl.SelectAttrValue("id", ""),
				Kind: kind,
				File: mediaEl.SelectAttrValue("file", ""),
				Rect: model.NewBBox(
					elemFloatAttr(mediaEl, "x1", 0),
					elemFloatAttr(mediaEl, "y1", 0),
					elemFloatAttr(mediaEl, "x2", 0),
					elemFloatAttr(mediaEl, "y2", 0),
				),
				Curves:         elemIntAttr(mediaEl, "curves", 0),
				NonRectLines:   elemIntAttr(mediaEl, "lines", 0),
				Quads:          elemIntAttr(mediaEl, "quads", 0),
				TextBlockCount: elemIntAttr(mediaEl, "text_blocks", 0),
			})
		}

		for _, tableEl := range pageEl.SelectElements("table") {
			cand := TableCandidate{
				ID: tableEl.SelectAttrValue("id", ""),
				Rect: model.NewBBox(
					elemFloatAttr(tableEl, "x1", 0),
					elemFloatAttr(tableEl, "y1", 0),
					elemFloatAttr(tableEl, "x2", 0),
					elemFloatAttr(tableEl, "y2", 0),
				),
			}

			byRow := map[int][]model.Cell{}
			maxRow := -1
			if rowsEl := tableEl.SelectElement("rows"); rowsEl != nil {
				for _, rowEl := range rowsEl.SelectElements("row") {
					for _, cellEl := range rowEl.SelectElements("cell") {
						row := elemIntAttr(cellEl, "row", 0)
						col := elemIntAttr(cellEl, "col", 0)
						var text strings.Builder
						for i, chunkEl := range cellEl.SelectElements("chunk") {
							if i > 0 {
								text.WriteByte(' ')
							}
							text.WriteString(chunkEl.Text())
						}
						byRow[row] = append(byRow[row], model.Cell{
							Row:     row,
							Col:     col,
							Text:    model.NormalizeUnicode(strings.TrimSpace(text.String())),
							RowSpan: 1,
							ColSpan: 1,
						})
						if row > maxRow {
							maxRow = row
						}
					}
				}
			}
			for r := 0; r <= maxRow; r++ {
				cand.Rows = append(cand.Rows, byRow[r])
			}
			page.Tables = append(page.Tables, cand)
		}

		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

func elemFloatAttr(el *etree.Element, key string, def float64) float64 {
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func elemIntAttr(el *etree.Element, key string, def int) int {
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
