package promote

import (
	"strings"
	"testing"

	"github.com/tsawler/bookpack/model"
)

func fontFrag(fontID, text string, top float64) model.MergedFragment {
	return model.MergedFragment{Text: text, FontID: fontID, BBox: model.NewBBoxWH(0, top, 100, 12)}
}

func TestClassifyFontRolesBodyAndHeading(t *testing.T) {
	doc := model.NewDocument()
	doc.Fonts.Add(model.FontEntry{ID: "body", Size: 10, Family: "Times"})
	doc.Fonts.Add(model.FontEntry{ID: "h1", Size: 18, Family: "Times"})

	page := &model.Page{Number: 1}
	for i := 0; i < 5; i++ {
		page.Paragraphs = append(page.Paragraphs, model.Paragraph{
			Fragments: []model.MergedFragment{fontFrag("body", "body text", float64(i*20))},
		})
	}
	page.Paragraphs = append(page.Paragraphs, model.Paragraph{
		Fragments: []model.MergedFragment{fontFrag("h1", "Chapter One", 200)},
	})
	doc.AddPage(page)

	roles := ClassifyFontRoles(doc, nil)
	if roles["body"] != RoleBody {
		t.Errorf("body font role = %v, want RoleBody", roles["body"])
	}
	if roles["h1"] != RoleHeading1 {
		t.Errorf("heading font role = %v, want RoleHeading1", roles["h1"])
	}
}

func TestBuildSectionsNestsByLevel(t *testing.T) {
	doc := model.NewDocument()
	doc.Fonts.Add(model.FontEntry{ID: "body", Size: 10, Family: "Times"})
	doc.Fonts.Add(model.FontEntry{ID: "h1", Size: 20, Family: "Times"})
	doc.Fonts.Add(model.FontEntry{ID: "h2", Size: 16, Family: "Times"})

	page := &model.Page{Number: 1}
	page.Paragraphs = []model.Paragraph{
		{Fragments: []model.MergedFragment{fontFrag("h1", "Chapter 1", 0)}},
		{Fragments: []model.MergedFragment{fontFrag("body", "intro text", 30)}},
		{Fragments: []model.MergedFragment{fontFrag("h2", "Section 1.1", 60)}},
		{Fragments: []model.MergedFragment{fontFrag("body", "section text", 90)}},
	}
	doc.AddPage(page)

	roles := map[string]FontRole{"body": RoleBody, "h1": RoleHeading1, "h2": RoleHeading2}
	root := BuildSections(doc, roles, 0, 0, false, 0, 0, false)

	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level chapters, want 1", len(root.Children))
	}
	chapter := root.Children[0]
	if chapter.Title != "Chapter 1" {
		t.Errorf("chapter title = %q", chapter.Title)
	}
	if len(chapter.Children) != 1 || chapter.Children[0].Title != "Section 1.1" {
		t.Fatalf("expected one nested section titled 'Section 1.1', got %+v", chapter.Children)
	}
}

func TestBuildSectionsIdempotentOnAlreadyPromotedLevels(t *testing.T) {
	// Invariant 5: re-running BuildSections over a document whose paragraphs
	// are already all body-role (no remaining headings to promote) must not
	// fabricate new structure.
	doc := model.NewDocument()
	doc.Fonts.Add(model.FontEntry{ID: "body", Size: 10, Family: "Times"})
	page := &model.Page{Number: 1, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{fontFrag("body", "para one", 0)}},
		{Fragments: []model.MergedFragment{fontFrag("body", "para two", 20)}},
	}}
	doc.AddPage(page)

	roles := map[string]FontRole{"body": RoleBody}
	root := BuildSections(doc, roles, 0, 0, false, 0, 0, false)
	if len(root.Children) != 0 {
		t.Errorf("expected no chapters from an all-body document, got %d", len(root.Children))
	}
	if len(root.Body) != 2 {
		t.Errorf("expected 2 body paragraphs at root, got %d", len(root.Body))
	}
}

func paraAt(text string, left, top float64) model.Paragraph {
	return model.Paragraph{Fragments: []model.MergedFragment{
		{Text: text, BBox: model.NewBBoxWH(left, top, 200, 12)},
	}}
}

func TestPromoteListsGroupsConsistentIndentation(t *testing.T) {
	paras := []model.Paragraph{
		paraAt("Intro paragraph", 0, 0),
		paraAt("1. First item", 10, 20),
		paraAt("2. Second item", 10, 40),
		paraAt("3. Third item", 10, 60),
		paraAt("Closing paragraph", 0, 80),
	}

	out := PromoteLists(paras)
	if len(out) != 3 {
		t.Fatalf("got %d entries, want 3 (para, list, para)", len(out))
	}
	list, ok := out[1].(List)
	if !ok {
		t.Fatalf("entry 1 is %T, want List", out[1])
	}
	if len(list.Items) != 3 {
		t.Errorf("got %d list items, want 3", len(list.Items))
	}
	if list.Kind != ListOrdered {
		t.Errorf("list kind = %v, want ListOrdered", list.Kind)
	}
}

func TestPromoteListsLeavesIsolatedMarkerAsParagraph(t *testing.T) {
	paras := []model.Paragraph{
		paraAt("A. Smith", 0, 0),
		paraAt("Regular paragraph", 0, 20),
	}
	out := PromoteLists(paras)
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2", len(out))
	}
	if _, ok := out[0].(model.Paragraph); !ok {
		t.Errorf("isolated 'A. Smith' marker should not be promoted to a list, got %T", out[0])
	}
}

func TestDetectTOCWindowFindsContiguousRun(t *testing.T) {
	doc := model.NewDocument()
	for p := 1; p <= 3; p++ {
		doc.AddPage(&model.Page{Number: p, Paragraphs: []model.Paragraph{
			{Fragments: []model.MergedFragment{{Text: "Chapter One ..................... 1"}}},
			{Fragments: []model.MergedFragment{{Text: "Chapter Two ..................... 12"}}},
		}})
	}
	doc.AddPage(&model.Page{Number: 4, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{{Text: "This is a normal body paragraph with no dot leaders at all."}}},
	}})

	first, last, ok := DetectTOCWindow(doc)
	if !ok {
		t.Fatal("expected TOC window to be detected")
	}
	if first != 1 || last != 3 {
		t.Errorf("TOC window = [%d,%d], want [1,3]", first, last)
	}
}

func TestDetectIndexWindowFindsContiguousRun(t *testing.T) {
	doc := model.NewDocument()
	doc.AddPage(&model.Page{Number: 1, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{{Text: "A"}}},
		{Fragments: []model.MergedFragment{{Text: "abstraction, 12, 45"}}},
		{Fragments: []model.MergedFragment{{Text: "allocator, 3"}}},
	}})
	doc.AddPage(&model.Page{Number: 2, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{{Text: "B"}}},
		{Fragments: []model.MergedFragment{{Text: "binding, 9, 10-14"}}},
	}})
	doc.AddPage(&model.Page{Number: 3, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{{Text: "This is a normal body paragraph with no page references at all."}}},
	}})

	first, last, ok := DetectIndexWindow(doc)
	if !ok {
		t.Fatal("expected index window to be detected")
	}
	if first != 1 || last != 2 {
		t.Errorf("index window = [%d,%d], want [1,2]", first, last)
	}
}

func TestBuildSectionsEmitsBridgeheadsInsideIndexWindow(t *testing.T) {
	doc := model.NewDocument()
	doc.Fonts.Add(model.FontEntry{ID: "body", Size: 10, Family: "Times"})
	doc.AddPage(&model.Page{Number: 1, Paragraphs: []model.Paragraph{
		{Fragments: []model.MergedFragment{fontFrag("body", "A", 0)}},
		{Fragments: []model.MergedFragment{fontFrag("body", "abstraction, 12", 20)}},
	}})

	roles := map[string]FontRole{"body": RoleBody}
	root := BuildSections(doc, roles, 0, 0, false, 1, 1, true)

	if len(root.Body) != 2 {
		t.Fatalf("got %d body items, want 2", len(root.Body))
	}
	bridge, ok := root.Body[0].(Bridgehead)
	if !ok {
		t.Fatalf("entry 0 is %T, want Bridgehead", root.Body[0])
	}
	if bridge.Text != "A" {
		t.Errorf("bridgehead text = %q, want %q", bridge.Text, "A")
	}
	if _, ok := root.Body[1].(model.Paragraph); !ok {
		t.Errorf("entry 1 is %T, want model.Paragraph", root.Body[1])
	}
}

func TestIsAlphabetBridgehead(t *testing.T) {
	if !IsAlphabetBridgehead("A") {
		t.Error("single uppercase letter should be a bridgehead")
	}
	if IsAlphabetBridgehead("iv") {
		t.Error("lowercase roman numeral should not be a bridgehead")
	}
	if IsAlphabetBridgehead("AB") {
		t.Error("two-letter string should not be a bridgehead")
	}
}

func TestSanitizeCaptionSuppressesRunawayText(t *testing.T) {
	long := strings.Repeat("word ", 60)
	if sanitizeCaption(long) != "" {
		t.Error("long non-'Figure'-prefixed caption should be suppressed")
	}
	longFigure := "Figure " + long
	if sanitizeCaption(longFigure) == "" {
		t.Error("long caption starting with 'Figure' should be kept")
	}
}

func TestEmitProducesChapterAndFigure(t *testing.T) {
	root := &Section{
		Children: []*Section{
			{
				Level: 1,
				Title: "Chapter One",
				Body: []BodyItem{
					model.Paragraph{Fragments: []model.MergedFragment{{Text: "hello world"}}},
					&model.MediaElement{ID: "m1", FileRef: "page1_img1.png", Caption: "Figure 1: a diagram"},
				},
			},
		},
	}
	out := Emit(root, model.Metadata{Title: "Book"})
	s, err := out.WriteToString()
	if err != nil {
		t.Fatalf("WriteToString: %v", err)
	}
	if !strings.Contains(s, "<chapter") || !strings.Contains(s, "hello world") || !strings.Contains(s, "<figure") {
		t.Errorf("missing expected elements in output: %s", s)
	}
}
