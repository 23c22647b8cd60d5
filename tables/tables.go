package tables

import (
	"math"
	"regexp"
	"strings"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/model"
	"github.com/tsawler/bookpack/xmlin"
)

// captionPattern matches "Table 3", "Table 12.", case-insensitive, with
// optional trailing punctuation.
var captionPattern = regexp.MustCompile(`(?i)^Table\s+\d+[.:]?`)

// CaptionSource is one candidate caption: a text run considered for binding
// to a nearby table candidate. Callers build these from a page's assembled
// paragraphs (or merged fragments) before calling FilterCandidates.
type CaptionSource struct {
	Text string
	Rect model.BBox
}

// FilterCandidates binds captions to table candidates and applies the
// caption-distance filter policy (C9). It never silently drops a
// candidate: every rejection is recorded on summary as a
// TableFilteredNoCaption warning, and TablesDetected/TablesWritten/
// TablesFiltered are always updated so the run summary can answer "how
// many" even with the strict default.
func FilterCandidates(pageNumber int, candidates []xmlin.TableCandidate, captions []CaptionSource, opts config.Options, summary *bookerr.Summary) []*model.Table {
	summary.TablesDetected += len(candidates)

	var out []*model.Table
	for _, cand := range candidates {
		caption, found := nearestCaption(cand.Rect, captions, opts.MaxCaptionDistance())

		if !found && opts.RequireTableCaption() {
			summary.TableFilteredf(pageNumber, "table %s: no caption matching %q within %.0fpt", cand.ID, captionPattern.String(), opts.MaxCaptionDistance())
			continue
		}

		table := &model.Table{
			ID:      cand.ID,
			Page:    pageNumber,
			Rect:    cand.Rect,
			Caption: caption,
			Rows:    cand.Rows,
		}
		out = append(out, table)
		summary.TablesWritten++
	}

	return out
}

// nearestCaption returns the text of the closest caption-pattern-matching
// source within maxDistance points of rect's center, or ("", false) if none
// qualifies.
func nearestCaption(rect model.BBox, captions []CaptionSource, maxDistance float64) (string, bool) {
	best := math.Inf(1)
	bestText := ""
	found := false

	center := rect.Center()
	for _, c := range captions {
		trimmed := strings.TrimSpace(c.Text)
		if !captionPattern.MatchString(trimmed) {
			continue
		}
		other := c.Rect.Center()
		dx := center.X - other.X
		dy := center.Y - other.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > maxDistance {
			continue
		}
		if dist < best {
			best = dist
			bestText = trimmed
			found = true
		}
	}

	return bestText, found
}
