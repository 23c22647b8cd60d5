package fusion

import (
	"math"
	"testing"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/model"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// TestResolvePageDimensionsS3 is S3: a page with 0 text fragments and media
// on a 595x842 PDF page must get stand-in HTML dimensions of 892.5x1263 (PDF
// dims x1.5).
func TestResolvePageDimensionsS3(t *testing.T) {
	page := &model.Page{Number: 1, PDFWidth: 595, PDFHeight: 842}
	ResolvePageDimensions(page)

	if !almostEqual(page.HTMLWidth, 892.5, 1e-6) {
		t.Errorf("HTMLWidth = %v, want 892.5", page.HTMLWidth)
	}
	if !almostEqual(page.HTMLHeight, 1263, 1e-6) {
		t.Errorf("HTMLHeight = %v, want 1263", page.HTMLHeight)
	}
}

func TestTransformToHTMLSpaceMovesMediaRect(t *testing.T) {
	page := &model.Page{
		Number: 1, PDFWidth: 595, PDFHeight: 842, HTMLWidth: 823, HTMLHeight: 1161,
		Media: []*model.MediaElement{
			{ID: "m1", Rect: model.NewBBox(65.86, 185.67, 115.86, 235.67)},
		},
	}
	summary := bookerr.NewSummary()
	TransformToHTMLSpace(page, summary)

	sx := 823.0 / 595.0
	sy := 1161.0 / 842.0
	want := model.NewBBox(65.86*sx, 185.67*sy, 115.86*sx, 235.67*sy)
	got := page.Media[0].Rect
	if !almostEqual(got.X1, want.X1, 1e-6) || !almostEqual(got.Y1, want.Y1, 1e-6) {
		t.Errorf("transformed rect = %+v, want %+v", got, want)
	}
	if summary.CoordNormSkipped != 0 {
		t.Errorf("expected no skip warning when dimensions are present")
	}
}

func TestTransformSkippedWithoutDimensions(t *testing.T) {
	page := &model.Page{
		Number: 2,
		Media:  []*model.MediaElement{{ID: "m1", Rect: model.NewBBox(1, 1, 2, 2)}},
	}
	summary := bookerr.NewSummary()
	TransformToHTMLSpace(page, summary)
	if summary.CoordNormSkipped != 1 {
		t.Errorf("CoordNormSkipped = %d, want 1", summary.CoordNormSkipped)
	}
	if page.Media[0].Rect.X1 != 1 {
		t.Errorf("element must not be dropped when transform is skipped")
	}
}

func TestFilterOverlappingTextDropsContainedFragment(t *testing.T) {
	page := &model.Page{
		Media: []*model.MediaElement{{Rect: model.NewBBox(0, 0, 100, 100)}},
		Paragraphs: []model.Paragraph{
			{Fragments: []model.MergedFragment{
				{Text: "inside image", BBox: model.NewBBox(10, 10, 20, 20)},
			}},
			{Fragments: []model.MergedFragment{
				{Text: "outside image", BBox: model.NewBBox(200, 200, 220, 220)},
			}},
		},
	}
	FilterOverlappingText(page, 0.5)

	if len(page.Paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(page.Paragraphs))
	}
	if page.Paragraphs[0].Text() != "outside image" {
		t.Errorf("kept paragraph = %q", page.Paragraphs[0].Text())
	}
}

func TestAssignReadingOrderInterleaves(t *testing.T) {
	page := &model.Page{
		Paragraphs: []model.Paragraph{
			{Fragments: []model.MergedFragment{
				{Text: "first", BBox: model.NewBBox(0, 0, 100, 10)},
				{Text: "second", BBox: model.NewBBox(0, 50, 100, 60)},
			}},
		},
		Media: []*model.MediaElement{
			{ID: "between", Rect: model.NewBBox(0, 25, 100, 35)},
		},
	}
	AssignReadingOrder(page)

	first := page.Paragraphs[0].Fragments[0].ReadingOrder
	second := page.Paragraphs[0].Fragments[1].ReadingOrder
	mediaOrder := page.Media[0].ReadingOrder

	if mediaOrder <= first || mediaOrder >= second {
		t.Errorf("media reading_order %v not between %v and %v", mediaOrder, first, second)
	}
	if mediaOrder != (first+second)/2 {
		t.Errorf("media reading_order = %v, want midpoint %v", mediaOrder, (first+second)/2)
	}
}

func TestUnionPageNumbersKeepsMediaOnlyPages(t *testing.T) {
	union := UnionPageNumbers([]int{1, 2}, []int{2, 3}, nil)
	want := []int{1, 2, 3}
	if len(union) != len(want) {
		t.Fatalf("got %v, want %v", union, want)
	}
	for i := range want {
		if union[i] != want[i] {
			t.Errorf("union[%d] = %d, want %d", i, union[i], want[i])
		}
	}
}
