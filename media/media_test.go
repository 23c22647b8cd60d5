package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
	"github.com/tsawler/bookpack/xmlin"
)

// TestDedupVectorsS4 is S4: raster 300x300 at (100,100) and (500,100);
// vector region (80,50,680,450). overlap_ratio_of(raster, vector) = 1.0 >
// 0.20 -> vector is skipped; both rasters kept.
func TestDedupVectorsS4(t *testing.T) {
	rasters := []xmlin.MediaCandidate{
		{ID: "r1", Kind: model.Raster, Rect: model.NewBBoxWH(100, 100, 300, 300)},
		{ID: "r2", Kind: model.Raster, Rect: model.NewBBoxWH(500, 100, 300, 300)},
	}
	vectors := []xmlin.MediaCandidate{
		{ID: "v1", Kind: model.Vector, Rect: model.NewBBox(80, 50, 680, 450)},
	}

	kept := DedupVectors(vectors, rasters, 0.20)
	if len(kept) != 0 {
		t.Fatalf("expected the fully-overlapped vector to be deduped, got %d kept", len(kept))
	}
}

func TestIsComplexShape(t *testing.T) {
	cases := []struct {
		name string
		v    xmlin.MediaCandidate
		want bool
	}{
		{"one curve", xmlin.MediaCandidate{Curves: 1}, true},
		{"three lines", xmlin.MediaCandidate{NonRectLines: 3}, true},
		{"two quads", xmlin.MediaCandidate{Quads: 2}, true},
		{"plain rectangle", xmlin.MediaCandidate{Quads: 1}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsComplexShape(c.v); got != c.want {
				t.Errorf("IsComplexShape(%+v) = %v, want %v", c.v, got, c.want)
			}
		})
	}
}

func TestFilterVectorsTextHeavyNonComplexSkipped(t *testing.T) {
	vectors := []xmlin.MediaCandidate{
		{ID: "textheavy-simple", TextBlockCount: 5, Quads: 1},
		{ID: "textheavy-complex", TextBlockCount: 5, Curves: 1},
		{ID: "sparse-simple", TextBlockCount: 0, Quads: 1},
	}
	kept := FilterVectors(vectors)
	ids := map[string]bool{}
	for _, v := range kept {
		ids[v.ID] = true
	}
	if ids["textheavy-simple"] {
		t.Error("text-heavy non-complex vector should be skipped")
	}
	if !ids["textheavy-complex"] {
		t.Error("text-heavy complex-shape vector should be kept")
	}
	if !ids["sparse-simple"] {
		t.Error("non-text-heavy vector should be kept")
	}
}

func TestExtractPageStableFilenames(t *testing.T) {
	candidates := []xmlin.MediaCandidate{
		{ID: "m1", Kind: model.Raster, Rect: model.NewBBoxWH(50, 50, 40, 40), File: "orig.jpg"},
		{ID: "m2", Kind: model.Raster, Rect: model.NewBBoxWH(200, 50, 40, 40)},
	}
	page := model.NewBBox(0, 0, 595, 842)
	summary := bookerr.NewSummary()
	out := ExtractPage(3, candidates, page, nil, config.Default(), summary)

	if len(out) != 2 {
		t.Fatalf("got %d elements, want 2", len(out))
	}
	if out[0].FileRef != "page3_img1.jpg" {
		t.Errorf("filename = %q, want page3_img1.jpg", out[0].FileRef)
	}
	if out[1].FileRef != "page3_img2.png" {
		t.Errorf("filename = %q, want page3_img2.png", out[1].FileRef)
	}
	if summary.MediaEmitted != 2 {
		t.Errorf("MediaEmitted = %d, want 2", summary.MediaEmitted)
	}
}

func TestSniffFormatFallsBackToPNG(t *testing.T) {
	if got := SniffFormat([]byte("not an image")); got != "png" {
		t.Errorf("SniffFormat(garbage) = %q, want png", got)
	}
}

func TestBuildRasterSidecarReencodesToPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}

	sidecar := BuildRasterSidecar("page1_img1.png", raw.Bytes(), zap.NewNop())
	if sidecar.Filename != "page1_img1.png" {
		t.Errorf("Filename = %q, want page1_img1.png", sidecar.Filename)
	}
	if len(sidecar.Data) == 0 {
		t.Error("expected non-empty re-encoded data")
	}
}

func TestBuildRasterSidecarFallsBackOnUndecodableInput(t *testing.T) {
	sidecar := BuildRasterSidecar("page1_img2.bin", []byte("garbage"), zap.NewNop())
	if string(sidecar.Data) != "garbage" {
		t.Error("expected undecodable input to be stored as-is")
	}
}

func TestBundleAccumulatesAcrossAdds(t *testing.T) {
	b := NewBundle()
	b.Add(Sidecar{Filename: "page1_img1.png", Data: []byte("a")})
	b.Add(Sidecar{Filename: "page2_img1.png", Data: []byte("b")})

	files := b.Files()
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Filename != "page1_img1.png" || files[1].Filename != "page2_img1.png" {
		t.Errorf("unexpected file order: %+v", files)
	}
}
