// Package xmlin parses the two external XML documents consumed by the
// pipeline (§6): the text-layout extractor's "HTML-like" per-glyph markup,
// and the media/table extractor's strict XML. The two are deliberately
// parsed with different tokenizers — the text-layout side is tolerant of
// the loosely-escaped, occasionally-unbalanced markup real HTML-like text
// extractors emit, while the media/table side is well-formed XML and is
// parsed strictly so a malformed document fails fast instead of silently
// losing elements.
package xmlin

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/bookpack/model"
)

// TextLayoutPage is one <page> element from the text-layout document: its
// declared dimensions and the ordered fragments found within it. Font
// entries are returned separately since <fontspec> elements may appear
// once per document rather than per page.
type TextLayoutPage struct {
	Number int
	Width  float64
	Height float64
	Fragments []model.Fragment
}

// TextLayoutDoc is the parsed result of the text-layout document.
type TextLayoutDoc struct {
	Pages []TextLayoutPage
	Fonts *model.FontTable
}

// ParseTextLayout reads the text-layout extractor's XML: per-page
// `<page width height>` containing `<text font left top width height>CHAR
// </text>` fragments and a `<fontspec id size family>` table.
func ParseTextLayout(r io.Reader) (*TextLayoutDoc, error) {
	z := html.NewTokenizer(r)
	doc := &TextLayoutDoc{Fonts: model.NewFontTable()}

	var curPage *TextLayoutPage
	var pageNum int

	// pending<N> hold attributes for the element currently accumulating
	// character data, since the text content arrives as a separate token.
	var pendingText *pendingFragment

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("xmlin: text-layout parse error: %w", err)
			}
			if curPage != nil {
				doc.Pages = append(doc.Pages, *curPage)
			}
			return doc, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := tagAttrs(z)
			switch name {
			case "page":
				if curPage != nil {
					doc.Pages = append(doc.Pages, *curPage)
				}
				pageNum++
				curPage = &TextLayoutPage{
					Number: attrInt(attrs, "number", pageNum),
					Width:  attrFloat(attrs, "width", 0),
					Height: attrFloat(attrs, "height", 0),
				}
			case "fontspec":
				style := model.StyleRegular
				if attrBool(attrs, "bold") {
					style |= model.StyleBold
				}
				if attrBool(attrs, "italic") {
					style |= model.StyleItalic
				}
				doc.Fonts.Add(model.FontEntry{
					ID:     attrs["id"],
					Size:   attrFloat(attrs, "size", 0),
					Family: attrs["family"],
					Style:  style,
				})
			case "text":
				pendingText = &pendingFragment{attrs: attrs}
			}

		case html.TextToken:
			if pendingText != nil {
				pendingText.text += string(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "text" && pendingText != nil && curPage != nil {
				curPage.Fragments = append(curPage.Fragments, pendingText.toFragment(curPage.Number, len(curPage.Fragments)))
				pendingText = nil
			}
		}
	}
}

type pendingFragment struct {
	attrs map[string]string
	text  string
}

func (p *pendingFragment) toFragment(page, index int) model.Fragment {
	text := model.NormalizeUnicode(strings.TrimSpace(p.text))
	if text == "" {
		text = model.NormalizeUnicode(p.text)
	}
	return model.Fragment{
		Index:  index,
		Text:   text,
		Page:   page,
		Left:   attrFloat(p.attrs, "left", 0),
		Top:    attrFloat(p.attrs, "top", 0),
		Width:  attrFloat(p.attrs, "width", 0),
		Height: attrFloat(p.attrs, "height", 0),
		FontID: p.attrs["font"],
		Bold:   attrBool(p.attrs, "bold"),
		Italic: attrBool(p.attrs, "italic"),
	}
}

func tagAttrs(z *html.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	attrs := map[string]string{}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return string(name), attrs
}

func attrFloat(attrs map[string]string, key string, def float64) float64 {
	v, ok := attrs[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func attrInt(attrs map[string]string, key string, def int) int {
	v, ok := attrs[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func attrBool(attrs map[string]string, key string) bool {
	v, ok := attrs[key]
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
