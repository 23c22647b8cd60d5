package model

import "math"

// Point is a location in one of the pipeline's two coordinate spaces.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox is a rectangle in top-left-origin coordinates: (X1,Y1) is the top-left
// corner, (X2,Y2) the bottom-right corner, Y increasing downward. Both the
// PDF-native space and the HTML-like space used across the pipeline share
// this origin and orientation; they differ only by axis scale, so no
// coordinate flip is ever required when reconciling the two.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// NewBBox builds a box from its corners, normalizing so X1<=X2 and Y1<=Y2.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// NewBBoxWH builds a box from its top-left corner and dimensions.
func NewBBoxWH(x, y, width, height float64) BBox {
	return BBox{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// NewBBoxFromPoints builds the minimal box enclosing two points.
func NewBBoxFromPoints(p1, p2 Point) BBox {
	return NewBBox(p1.X, p1.Y, p2.X, p2.Y)
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 { return b.X1 }

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 { return b.X2 }

// Top returns the top edge Y coordinate (smaller Y, since Y grows downward).
func (b BBox) Top() float64 { return b.Y1 }

// Bottom returns the bottom edge Y coordinate (larger Y).
func (b BBox) Bottom() float64 { return b.Y2 }

// Width returns the box width.
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Center returns the center point of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Contains reports whether a point lies within the box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// ContainsBox reports whether other is fully enclosed by b.
func (b BBox) ContainsBox(other BBox) bool {
	return other.X1 >= b.X1 && other.X2 <= b.X2 && other.Y1 >= b.Y1 && other.Y2 <= b.Y2
}

// Intersects reports whether two boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X2 < other.X1 || b.X1 > other.X2 || b.Y2 < other.Y1 || b.Y1 > other.Y2)
}

// Intersection returns the overlapping region of two boxes, or the zero
// value BBox if they do not intersect.
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return BBox{
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
		X2: math.Min(b.X2, other.X2),
		Y2: math.Min(b.Y2, other.Y2),
	}
}

// Union returns the smallest box enclosing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
		X2: math.Max(b.X2, other.X2),
		Y2: math.Max(b.Y2, other.Y2),
	}
}

// Area returns the box's area; zero for an empty or invalid box.
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Expand grows the box by margin on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{X1: b.X1 - margin, Y1: b.Y1 - margin, X2: b.X2 + margin, Y2: b.Y2 + margin}
}

// IoU returns the intersection-over-union ratio of two boxes.
func (b BBox) IoU(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	inter := b.Intersection(other).Area()
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// OverlapRatio returns intersection-area / smaller-of-the-two-areas. It is
// symmetric and is used where either box being mostly covered is significant
// regardless of which one is larger (e.g. merged-block consolidation).
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}
	return b.Intersection(other).Area() / minArea
}

// OverlapRatioOf returns area(b ∩ other) / area(b) — deliberately
// asymmetric, unlike IoU or OverlapRatio. A raster fully nested inside a
// much larger vector region scores 1.0 here, whereas IoU would report a
// small value because the union is dominated by the vector's own area.
// Used by the media deduplication pass (C8) for exactly that reason.
func (b BBox) OverlapRatioOf(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	if b.Area() == 0 {
		return 0
	}
	return b.Intersection(other).Area() / b.Area()
}

// IsEmpty reports whether the box has non-positive width or height.
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// IsValid reports whether the box has strictly positive width and height.
func (b BBox) IsValid() bool {
	return b.Width() > 0 && b.Height() > 0
}

// Transform rescales a box from one coordinate space into another by pure
// axis scaling — no rotation, no translation, no y-flip. Both the PDF-native
// and HTML-like spaces used across the pipeline share a top-left origin, so
// this is the only operation needed to reconcile them (see C10 and the
// design note on never propagating PDF-space rects past the fusion
// boundary).
func (b BBox) Transform(sx, sy float64) BBox {
	return BBox{X1: b.X1 * sx, Y1: b.Y1 * sy, X2: b.X2 * sx, Y2: b.Y2 * sy}
}

// ScaleFactors computes the (sx, sy) pure axis-scale factors that convert
// PDF-space dimensions into HTML-space dimensions. It returns (0, 0) when
// any of the four dimensions is missing (zero or negative), which callers
// treat as "skip the transform".
func ScaleFactors(pdfW, pdfH, htmlW, htmlH float64) (sx, sy float64) {
	if pdfW <= 0 || pdfH <= 0 || htmlW <= 0 || htmlH <= 0 {
		return 0, 0
	}
	return htmlW / pdfW, htmlH / pdfH
}

