package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sidecar is one rendered file for the media bundle: its stable filename
// and encoded bytes.
type Sidecar struct {
	Filename string
	Data     []byte
}

// SniffFormat identifies a raster's container format from its bytes,
// falling back to "png" when the format cannot be determined — grounded on
// the teacher pack's use of filetype for sidecar extension detection.
func SniffFormat(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "png"
	}
	return kind.Extension
}

// BuildRasterSidecar re-encodes an embedded raster to PNG for the bundle,
// leaving the source bytes untouched when decoding fails (the Sidecar keeps
// the filename passed in, and no lossy recompression is attempted on data
// this package cannot decode).
func BuildRasterSidecar(filename string, data []byte, log *zap.Logger) Sidecar {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("unable to decode raster for sidecar re-encode, storing as-is",
			zap.String("file", filename), zap.Error(err))
		return Sidecar{Filename: filename, Data: data}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		log.Warn("unable to re-encode raster sidecar, storing original bytes",
			zap.String("file", filename), zap.Error(err))
		return Sidecar{Filename: filename, Data: data}
	}
	return Sidecar{Filename: filename, Data: buf.Bytes()}
}

// RasterizeVector renders an SVG-described vector region (a kept complex
// shape with no corresponding embedded raster) into a PNG sidecar at the
// region's own aspect ratio.
func RasterizeVector(filename string, svgData []byte, targetWidth, targetHeight int, log *zap.Logger) (Sidecar, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return Sidecar{}, fmt.Errorf("media: parse vector region %s: %w", filename, err)
	}

	w, h := targetWidth, targetHeight
	if w <= 0 || h <= 0 {
		w, h = int(icon.ViewBox.W), int(icon.ViewBox.H)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return Sidecar{}, fmt.Errorf("media: encode rasterized vector %s: %w", filename, err)
	}

	log.Debug("rasterized vector region", zap.String("file", filename), zap.Int("width", w), zap.Int("height", h))
	return Sidecar{Filename: filename, Data: buf.Bytes()}, nil
}
