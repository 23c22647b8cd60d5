// Package media implements the media extractor (C8): content-area
// shrinkage, full-page-decorative classification, vector complex-shape
// classification, raster/vector dedup, and the stable sidecar filename and
// rasterization bundle emitted alongside the unified document.
package media
