package xmlin

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/bookpack/model"
)

func TestParseTextLayout(t *testing.T) {
	src := `<doc>
<fontspec id="f0" size="12" family="Times"/>
<fontspec id="f1" size="11" family="Times" bold="1"/>
<page number="1" width="612" height="792">
<text font="f0" left="10" top="20" width="100" height="14">Hello world</text>
<text font="f1" left="10" top="40" width="50" height="14" bold="1">Bold</text>
</page>
</doc>`

	doc, err := ParseTextLayout(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseTextLayout error: %v", err)
	}
	if doc.Fonts.Len() != 2 {
		t.Fatalf("expected 2 font entries, got %d", doc.Fonts.Len())
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Number != 1 || page.Width != 612 || page.Height != 792 {
		t.Errorf("page attrs = %+v, want number=1 width=612 height=792", page)
	}
	if len(page.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(page.Fragments))
	}
	if page.Fragments[0].Text != "Hello world" {
		t.Errorf("fragment 0 text = %q, want %q", page.Fragments[0].Text, "Hello world")
	}
	if !page.Fragments[1].Bold {
		t.Error("expected fragment 1 to carry the bold hint")
	}
}

func TestParseMediaTable(t *testing.T) {
	src := `<doc>
<page index="1" width="595" height="842">
<media id="m1" type="raster" file="page1_img1.png" x1="65.86" y1="185.67" x2="165.86" y2="285.67"/>
<table id="t1" x1="50" y1="400" x2="500" y2="600">
<rows>
<row>
<cell col="0" row="0"><chunk>Name</chunk></cell>
<cell col="1" row="0"><chunk>Value</chunk></cell>
</row>
<row>
<cell col="0" row="1"><chunk>alpha</chunk></cell>
<cell col="1" row="1"><chunk>1</chunk></cell>
</row>
</rows>
</table>
</page>
</doc>`

	doc, err := ParseMediaTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseMediaTable error: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if len(page.Media) != 1 || page.Media[0].File != "page1_img1.png" {
		t.Fatalf("media = %+v", page.Media)
	}
	if len(page.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(page.Tables))
	}
	table := page.Tables[0]
	want := [][]model.Cell{
		{
			{Row: 0, Col: 0, Text: "Name", RowSpan: 1, ColSpan: 1},
			{Row: 0, Col: 1, Text: "Value", RowSpan: 1, ColSpan: 1},
		},
		{
			{Row: 1, Col: 0, Text: "alpha", RowSpan: 1, ColSpan: 1},
			{Row: 1, Col: 1, Text: "1", RowSpan: 1, ColSpan: 1},
		},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("table rows mismatch (-want +got):\n%s", diff)
	}
}
