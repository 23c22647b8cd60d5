package tables

import (
	"fmt"
	"testing"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
	"github.com/tsawler/bookpack/xmlin"
)

func candidateAt(id string, x float64) xmlin.TableCandidate {
	return xmlin.TableCandidate{
		ID:   id,
		Rect: model.NewBBox(x, 100, x+50, 150),
		Rows: [][]model.Cell{{{Row: 0, Col: 0, Text: "a"}}},
	}
}

// TestFilterCandidatesTransparency is S5: 86 candidates, 21 with a matching
// caption within distance. require_table_caption=true emits 21 and reports
// filtered=65; require_table_caption=false emits all 86.
func TestFilterCandidatesTransparency(t *testing.T) {
	const total = 86
	const withCaption = 21

	var candidates []xmlin.TableCandidate
	var captions []CaptionSource
	for i := 0; i < total; i++ {
		x := float64(i * 100)
		candidates = append(candidates, candidateAt(fmt.Sprintf("t%d", i), x))
		if i < withCaption {
			captions = append(captions, CaptionSource{
				Text: fmt.Sprintf("Table %d", i+1),
				Rect: model.NewBBox(x, 95, x+50, 99),
			})
		}
	}

	t.Run("strict", func(t *testing.T) {
		summary := bookerr.NewSummary()
		out := FilterCandidates(1, candidates, captions, config.Default().WithRequireTableCaption(true), summary)
		if len(out) != withCaption {
			t.Errorf("emitted %d tables, want %d", len(out), withCaption)
		}
		if summary.TablesFiltered != total-withCaption {
			t.Errorf("filtered = %d, want %d", summary.TablesFiltered, total-withCaption)
		}
		if summary.TablesDetected != total {
			t.Errorf("detected = %d, want %d", summary.TablesDetected, total)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		summary := bookerr.NewSummary()
		out := FilterCandidates(1, candidates, captions, config.Default().WithRequireTableCaption(false), summary)
		if len(out) != total {
			t.Errorf("emitted %d tables, want %d", len(out), total)
		}
		if summary.TablesFiltered != 0 {
			t.Errorf("filtered = %d, want 0 when caption not required", summary.TablesFiltered)
		}
	})
}

func TestNearestCaptionRejectsNonMatchingText(t *testing.T) {
	captions := []CaptionSource{{Text: "Figure 1: a chart", Rect: model.NewBBox(0, 95, 50, 99)}}
	_, found := nearestCaption(model.NewBBox(0, 100, 50, 150), captions, 100)
	if found {
		t.Errorf("expected no caption match for non-table-pattern text")
	}
}
