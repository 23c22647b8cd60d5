package layout

import (
	"sort"

	"github.com/tsawler/bookpack/model"
)

// ColumnConfig configures column-start detection (C6).
type ColumnConfig struct {
	MaxColumns int // spec caps this at 4

	// FullWidthFraction is the page-width fraction above which a fragment is
	// considered full-width regardless of column geometry.
	FullWidthFraction float64

	// BucketWidth is the left-position histogram bucket size, in points.
	BucketWidth float64

	// MinSupport is the minimum fragment count for a bucket to count as a
	// column-start peak.
	MinSupport int
}

// DefaultColumnConfig returns sensible defaults grounded on the teacher's
// own column-start bucketing approach.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		MaxColumns:        4,
		FullWidthFraction: 0.60,
		BucketWidth:       10.0,
		MinSupport:        3,
	}
}

// DetectColumnStarts buckets fragment left-positions into a histogram and
// returns up to MaxColumns column-start x-coordinates, ascending, for
// buckets whose support clears MinSupport.
func DetectColumnStarts(fragments []model.Fragment, cfg ColumnConfig) []float64 {
	if len(fragments) == 0 {
		return nil
	}

	buckets := map[int]int{}
	for _, f := range fragments {
		b := int(f.Left / cfg.BucketWidth)
		buckets[b]++
	}

	type peak struct {
		bucket int
		count  int
	}
	var peaks []peak
	for b, count := range buckets {
		if count >= cfg.MinSupport {
			peaks = append(peaks, peak{bucket: b, count: count})
		}
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].count != peaks[j].count {
			return peaks[i].count > peaks[j].count
		}
		return peaks[i].bucket < peaks[j].bucket
	})

	if len(peaks) > cfg.MaxColumns {
		peaks = peaks[:cfg.MaxColumns]
	}

	starts := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		starts = append(starts, float64(p.bucket)*cfg.BucketWidth)
	}
	sort.Float64s(starts)
	return starts
}

// AssignColumns tags every fragment with ColID: 0 for full-width or
// cross-column content, else 1..N based on the nearest detected column
// start to its left edge.
func AssignColumns(fragments []model.Fragment, pageWidth float64, cfg ColumnConfig) []model.Fragment {
	out := make([]model.Fragment, len(fragments))
	copy(out, fragments)

	starts := DetectColumnStarts(out, cfg)
	if len(starts) == 0 {
		for i := range out {
			out[i].ColID = 0
		}
		return out
	}

	fullWidthAt := pageWidth * cfg.FullWidthFraction

	for i, f := range out {
		if f.Width >= fullWidthAt {
			out[i].ColID = 0
			continue
		}

		// nearest column start at or before the fragment's left edge
		colIdx := 0
		for k, s := range starts {
			if f.Left+1e-6 >= s {
				colIdx = k + 1
			}
		}
		if colIdx == 0 {
			colIdx = 1
		}

		// cross-column: the fragment's right edge reaches past the next
		// column's start, so it spans more than one detected column.
		if colIdx < len(starts) && f.Left+f.Width > starts[colIdx] {
			out[i].ColID = 0
			continue
		}

		out[i].ColID = colIdx
	}

	return out
}

// AssignBlocks walks fragments sorted by (baseline, left) and assigns a
// sequential ReadingBlock number, incrementing every time ColID changes
// from the previous fragment. This is the only correct interleaving rule
// per the specification: grouping every ColID==0 fragment under the first
// column's block is explicitly forbidden, since it collapses distinct
// full-width interruptions (a caption between two columns, a footnote
// below them) into a single block and destroys reading order.
func AssignBlocks(fragments []model.Fragment) []model.Fragment {
	out := make([]model.Fragment, len(fragments))
	copy(out, fragments)

	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i].Baseline(), out[j].Baseline()
		if bi != bj {
			return bi < bj
		}
		return out[i].Left < out[j].Left
	})

	block := 0
	prevColID := -1
	for i := range out {
		if out[i].ColID != prevColID {
			block++
			prevColID = out[i].ColID
		}
		out[i].ReadingBlock = block
	}
	return out
}
