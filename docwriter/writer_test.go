package docwriter

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/model"
)

func TestWriteProducesPagesInAscendingOrder(t *testing.T) {
	doc := model.NewDocument()
	doc.Fonts.Add(model.FontEntry{ID: "f1", Size: 12, Family: "Times"})
	doc.AddPage(&model.Page{Number: 2, HTMLWidth: 600, HTMLHeight: 800})
	doc.AddPage(&model.Page{Number: 1, HTMLWidth: 600, HTMLHeight: 800,
		Paragraphs: []model.Paragraph{
			{Fragments: []model.MergedFragment{{Text: "hello", FontID: "f1", BBox: model.NewBBox(0, 0, 10, 10)}}},
		},
	})

	summary := bookerr.NewSummary()
	log := zap.NewNop()
	out := Write(doc, summary, log)

	pagesEl := out.FindElement("//pages")
	if pagesEl == nil {
		t.Fatal("missing <pages>")
	}
	pageEls := pagesEl.SelectElements("page")
	if len(pageEls) != 2 {
		t.Fatalf("got %d pages, want 2", len(pageEls))
	}
	if pageEls[0].SelectAttrValue("number", "") != "1" {
		t.Errorf("first page number = %q, want 1", pageEls[0].SelectAttrValue("number", ""))
	}
	if pageEls[1].SelectAttrValue("number", "") != "2" {
		t.Errorf("second page number = %q, want 2", pageEls[1].SelectAttrValue("number", ""))
	}

	if summary.ParagraphsEmitted != 1 {
		t.Errorf("ParagraphsEmitted = %d, want 1", summary.ParagraphsEmitted)
	}

	s, err := out.WriteToString()
	if err != nil {
		t.Fatalf("WriteToString: %v", err)
	}
	if !strings.Contains(s, "hello") {
		t.Errorf("serialized output missing fragment text")
	}
}
