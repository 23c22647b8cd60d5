package layout

import "github.com/tsawler/bookpack/model"

// ScriptConfig holds the script-detection envelope (§6 script_max_*,
// sub/superscript_top_diff knobs).
type ScriptConfig struct {
	MaxWidth  float64
	MaxHeight float64
	MaxLen    int

	SuperscriptTopDiff  float64 // |dtop| <= this -> superscript
	SubscriptMaxTopDiff float64 // dtop in (SuperscriptTopDiff, this] -> subscript

	AdjacencyGap float64 // max horizontal gap to parent, in points

	ExcludedSymbols map[string]bool
}

// DefaultScriptConfig returns the specification's documented defaults.
func DefaultScriptConfig() ScriptConfig {
	return ScriptConfig{
		MaxWidth:            15,
		MaxHeight:           12,
		MaxLen:              3,
		SuperscriptTopDiff:  3,
		SubscriptMaxTopDiff: 10,
		AdjacencyGap:        5,
		ExcludedSymbols:     map[string]bool{"°": true, "©": true, "®": true, "…": true},
	}
}

// DetectScripts runs before row grouping (C4) so marked scripts survive into
// merging regardless of row assignment. It never reorders or regroups
// fragments — baseline grouping downstream is computed independently, so
// drop caps and oversized initials (which fail the size envelope below)
// remain untouched by this pass.
//
// Returns a new slice with IsScript/ScriptType/ScriptParentIdx populated;
// Text, position and FontID are left exactly as given (fragments are
// immutable once ingested).
func DetectScripts(fragments []model.Fragment, cfg ScriptConfig) []model.Fragment {
	out := make([]model.Fragment, len(fragments))
	copy(out, fragments)

	for i := range out {
		f := out[i]
		if !isScriptEligible(f, cfg) {
			continue
		}

		parentIdx, dtop, found := nearestScriptParent(out, i, cfg)
		if !found {
			continue
		}

		switch {
		case dtop >= -cfg.SuperscriptTopDiff && dtop <= cfg.SuperscriptTopDiff:
			out[i].IsScript = true
			out[i].ScriptType = model.Superscript
			out[i].ScriptParentIdx = parentIdx
		case dtop > cfg.SuperscriptTopDiff && dtop <= cfg.SubscriptMaxTopDiff:
			out[i].IsScript = true
			out[i].ScriptType = model.Subscript
			out[i].ScriptParentIdx = parentIdx
		}
	}

	return out
}

func isScriptEligible(f model.Fragment, cfg ScriptConfig) bool {
	if f.Width >= cfg.MaxWidth || f.Height >= cfg.MaxHeight {
		return false
	}
	if len([]rune(f.Text)) > cfg.MaxLen {
		return false
	}
	if cfg.ExcludedSymbols[f.Text] {
		return false
	}
	return true
}

// nearestScriptParent finds the horizontally-nearest eligible parent for
// fragment index i, returning its index and dtop = F.Top - P.Top.
func nearestScriptParent(fragments []model.Fragment, i int, cfg ScriptConfig) (parentIdx int, dtop float64, found bool) {
	f := fragments[i]
	bestGap := cfg.AdjacencyGap + 1
	parentIdx = -1

	for j, p := range fragments {
		if j == i || p.Page != f.Page {
			continue
		}
		if p.IsScript {
			continue // a script cannot itself be a parent
		}
		if p.Height < f.Height {
			continue
		}

		gap := absFloat(f.Left - (p.Left + p.Width))
		adjacent := gap <= cfg.AdjacencyGap || (f.Left >= p.Left && f.Left <= p.Left+p.Width)
		if !adjacent {
			continue
		}
		if gap < bestGap {
			bestGap = gap
			parentIdx = j
		}
	}

	if parentIdx < 0 {
		return 0, 0, false
	}
	return parentIdx, f.Top - fragments[parentIdx].Top, true
}
