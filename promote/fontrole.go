package promote

import (
	"sort"
	"strconv"

	"github.com/tsawler/bookpack/model"
)

// FontRole classifies the structural role a font cluster plays across a
// document (§4.12 font-role analysis).
type FontRole int

const (
	RoleUnknown FontRole = iota
	RoleBody
	RoleHeading1
	RoleHeading2
	RoleHeading3
	RoleHeading4
	RoleTOC
	RoleCaption
)

func (r FontRole) String() string {
	switch r {
	case RoleBody:
		return "body"
	case RoleHeading1:
		return "h1"
	case RoleHeading2:
		return "h2"
	case RoleHeading3:
		return "h3"
	case RoleHeading4:
		return "h4"
	case RoleTOC:
		return "toc"
	case RoleCaption:
		return "caption"
	default:
		return "unknown"
	}
}

// HeadingLevel returns 1-4 for a heading role, 0 otherwise.
func (r FontRole) HeadingLevel() int {
	switch r {
	case RoleHeading1:
		return 1
	case RoleHeading2:
		return 2
	case RoleHeading3:
		return 3
	case RoleHeading4:
		return 4
	default:
		return 0
	}
}

// maxHeadingLevels caps the number of distinct heading levels assigned from
// font clusters, per the Open Question decision recorded in DESIGN.md.
const maxHeadingLevels = 4

type fontCluster struct {
	family string
	size   float64
	ids    []string
	count  int // paragraphs whose first fragment uses a font from this cluster
}

func clusterKey(family string, size float64) string {
	// 0.5pt bucketing keeps fonts that differ only by rounding error in one
	// cluster without merging genuinely distinct sizes.
	bucket := float64(int(size*2+0.5)) / 2
	return family + "|" + strconv.FormatFloat(bucket, 'f', 1, 64)
}

// ClassifyFontRoles clusters font entries by (family, size), ranks them by
// paragraph-count share, and assigns roles: the cluster with the largest
// paragraph share is body text; the remaining clusters, ranked by
// descending size and capped at 4 levels, become heading levels 1..4; the
// smallest-size cluster that touches a figure or table's bounding box is
// caption. TOC role is assigned separately per contiguous-page window by
// AssignTOCRole, since it depends on page adjacency rather than font
// clustering alone.
func ClassifyFontRoles(doc *model.Document, figureAndTableRects []model.BBox) map[string]FontRole {
	clusters := map[string]*fontCluster{}

	for _, f := range doc.Fonts.All() {
		k := clusterKey(f.Family, f.Size)
		c, ok := clusters[k]
		if !ok {
			c = &fontCluster{family: f.Family, size: f.Size}
			clusters[k] = c
		}
		c.ids = append(c.ids, f.ID)
	}

	for _, page := range doc.Pages {
		for _, para := range page.Paragraphs {
			if len(para.Fragments) == 0 {
				continue
			}
			entry, ok := doc.Fonts.Lookup(para.Fragments[0].FontID)
			if !ok {
				continue
			}
			k := clusterKey(entry.Family, entry.Size)
			if c, ok := clusters[k]; ok {
				c.count++
			}
		}
	}

	roles := map[string]FontRole{}
	if len(clusters) == 0 {
		return roles
	}

	ordered := make([]*fontCluster, 0, len(clusters))
	for _, c := range clusters {
		ordered = append(ordered, c)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].count > ordered[j].count })
	body := ordered[0]
	for _, id := range body.ids {
		roles[id] = RoleBody
	}

	remaining := ordered[1:]
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].size > remaining[j].size })

	for i, c := range remaining {
		if i >= maxHeadingLevels {
			break
		}
		level := FontRole(int(RoleHeading1) + i)
		for _, id := range c.ids {
			roles[id] = level
		}
	}

	if captionCluster := smallestTouchingFigureOrTable(remaining, figureAndTableRects, doc); captionCluster != nil {
		for _, id := range captionCluster.ids {
			roles[id] = RoleCaption
		}
	}

	return roles
}

func smallestTouchingFigureOrTable(clusters []*fontCluster, rects []model.BBox, doc *model.Document) *fontCluster {
	if len(rects) == 0 || len(clusters) == 0 {
		return nil
	}

	var candidates []*fontCluster
	for _, c := range clusters {
		if fontTouchesAnyRect(c, rects, doc) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].size < candidates[j].size })
	return candidates[0]
}

func fontTouchesAnyRect(c *fontCluster, rects []model.BBox, doc *model.Document) bool {
	idSet := map[string]bool{}
	for _, id := range c.ids {
		idSet[id] = true
	}

	for _, page := range doc.Pages {
		for _, para := range page.Paragraphs {
			for _, frag := range para.Fragments {
				if !idSet[frag.FontID] {
					continue
				}
				for _, r := range rects {
					if r.Intersects(frag.BBox) {
						return true
					}
				}
			}
		}
	}
	return false
}

// AssignTOCRole marks every font id used by paragraphs on pages in
// [firstPage, lastPage] as TOC role, overriding whatever role
// ClassifyFontRoles assigned — the TOC window is a page-adjacency property,
// not a font-clustering one.
func AssignTOCRole(roles map[string]FontRole, doc *model.Document, firstPage, lastPage int) {
	for _, page := range doc.Pages {
		if page.Number < firstPage || page.Number > lastPage {
			continue
		}
		for _, para := range page.Paragraphs {
			for _, frag := range para.Fragments {
				roles[frag.FontID] = RoleTOC
			}
		}
	}
}
