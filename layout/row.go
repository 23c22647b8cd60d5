package layout

import (
	"sort"

	"github.com/tsawler/bookpack/model"
)

// Row is the transient grouping produced by the row grouper (C3): fragments
// sharing a baseline within tolerance. Rows do not survive past row-internal
// merging (C5) — a MergedFragment is what gets carried forward.
type Row struct {
	Fragments []model.Fragment
	Baseline  float64
}

// GroupRows buckets a page's fragments into rows via one sequential sweep
// over fragments pre-sorted by (baseline, left), exactly the shape the
// specification forbids replacing with an O(n^2) per-fragment search
// against every existing row — a prior implementation of that kind caused
// unbounded stalls on dense pages.
//
// tol defaults to max(2.0, 0.15*medianHeight) when baselineTolerance <= 0.
func GroupRows(fragments []model.Fragment, baselineTolerance float64) []Row {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]model.Fragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		bi, bj := sorted[i].Baseline(), sorted[j].Baseline()
		if bi != bj {
			return bi < bj
		}
		return sorted[i].Left < sorted[j].Left
	})

	tol := baselineTolerance
	if tol <= 0 {
		tol = adaptiveTolerance(sorted)
	}

	var rows []Row
	var current Row
	var baselineSum float64
	var count int

	for _, frag := range sorted {
		b := frag.Baseline()
		if count == 0 {
			current = Row{}
			baselineSum, count = 0, 0
		} else if absFloat(b-current.Baseline) > tol {
			current.Baseline = baselineSum / float64(count)
			rows = append(rows, current)
			current = Row{}
			baselineSum, count = 0, 0
		}
		current.Fragments = append(current.Fragments, frag)
		baselineSum += b
		count++
		current.Baseline = baselineSum / float64(count)
	}
	if count > 0 {
		rows = append(rows, current)
	}

	for i := range rows {
		sort.Slice(rows[i].Fragments, func(a, b int) bool {
			return rows[i].Fragments[a].Left < rows[i].Fragments[b].Left
		})
	}

	return rows
}

func adaptiveTolerance(fragments []model.Fragment) float64 {
	if len(fragments) == 0 {
		return 2.0
	}
	heights := make([]float64, len(fragments))
	for i, f := range fragments {
		heights[i] = f.Height
	}
	sort.Float64s(heights)
	median := heights[len(heights)/2]
	return maxFloat(2.0, 0.15*median)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
