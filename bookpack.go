// Package bookpack provides a fluent API for converting a PDF's externally
// extracted text-layout and media/table XML into a DocBook document.
//
// Basic usage:
//
//	result, err := bookpack.Open(textLayout, mediaTable).Convert()
//
// With options:
//
//	result, err := bookpack.Open(textLayout, mediaTable).
//	    WithOptions(config.Default().WithDPI(300)).
//	    WithConcurrency(4).
//	    Convert()
package bookpack

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/config"
	"github.com/tsawler/bookpack/docwriter"
	"github.com/tsawler/bookpack/fusion"
	"github.com/tsawler/bookpack/layout"
	"github.com/tsawler/bookpack/media"
	"github.com/tsawler/bookpack/model"
	"github.com/tsawler/bookpack/pipeline"
	"github.com/tsawler/bookpack/promote"
	"github.com/tsawler/bookpack/refmap"
	"github.com/tsawler/bookpack/tables"
	"github.com/tsawler/bookpack/xmlin"
)

// MediaSource fetches the raw bytes an external extractor wrote for one
// media/table candidate's `file` attribute, so Convert can render the §6
// sidecar bundle. Without one configured, Convert still extracts every
// media element's geometry, classification, and caption; only the
// rendered Sidecar files are skipped.
type MediaSource func(file string) ([]byte, error)

// Converter is a fluent builder for one conversion run. The zero value is
// not usable; create one with Open.
type Converter struct {
	textLayout io.Reader
	mediaTable io.Reader

	opts        config.Options
	concurrency int
	pageTimeout time.Duration
	refMap      *refmap.Map
	log         *zap.Logger
	mediaSource MediaSource
	bundle      *media.Bundle
}

// Open creates a Converter reading the text-layout XML from textLayout and
// the media/table XML from mediaTable (§6 external inputs).
func Open(textLayout, mediaTable io.Reader) *Converter {
	return &Converter{
		textLayout:  textLayout,
		mediaTable:  mediaTable,
		opts:        config.Default(),
		concurrency: 0,
		refMap:      refmap.New(),
		log:         zap.NewNop(),
		bundle:      media.NewBundle(),
	}
}

// WithOptions replaces the run's tunables wholesale.
func (c *Converter) WithOptions(opts config.Options) *Converter {
	c.opts = opts
	return c
}

// WithConcurrency bounds the per-page worker pool (§5). 0 selects available
// cores at run time.
func (c *Converter) WithConcurrency(n int) *Converter {
	c.concurrency = n
	return c
}

// WithPageTimeout sets the per-page wall-clock budget (§5). Zero leaves the
// budget from the Options (or the pipeline's 30-second default) in place.
func (c *Converter) WithPageTimeout(d time.Duration) *Converter {
	c.pageTimeout = d
	return c
}

// WithReferenceMap supplies a reference resolver to record into, e.g. one
// restored via refmap.Map.ImportFromFile from an earlier phase.
func (c *Converter) WithReferenceMap(m *refmap.Map) *Converter {
	c.refMap = m
	return c
}

// WithLogger supplies a zap logger for the per-document counters docwriter
// logs (§4.11). The default is a no-op logger.
func (c *Converter) WithLogger(log *zap.Logger) *Converter {
	c.log = log
	return c
}

// WithMediaSource supplies the callback Convert uses to fetch a media
// candidate's source bytes for sidecar rendering (§6). Leaving this unset
// skips sidecar rendering entirely; every other stage is unaffected.
func (c *Converter) WithMediaSource(src MediaSource) *Converter {
	c.mediaSource = src
	return c
}

// Result is the terminal output of a conversion run.
type Result struct {
	Document *model.Document
	Unified  *etree.Document
	DocBook  *etree.Document
	RefMap   *refmap.Map
	Summary  *bookerr.Summary

	// Sidecars is the §6 media bundle: one rendered file per media.Sidecar
	// keyed by its stable filename (model.MediaElement.FileRef). Empty
	// unless the Converter was given a WithMediaSource.
	Sidecars []media.Sidecar
}

// Must is a helper that wraps a call to a function returning (T, error) and
// panics if the error is non-nil. Intended for scripts and tests where
// error handling would be cumbersome.
//
// Example:
//
//	result := bookpack.Must(bookpack.Open(tl, mt).Convert())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Convert runs the full pipeline: parses both XML inputs, fuses each page
// across a bounded worker pool (§5), merges paragraphs across page
// boundaries, writes the unified intermediate document (C11), then promotes
// it to a DocBook tree (C12). Apart from an input document that fails to
// parse, a document with no extractable content at all is the only failure
// this returns; every page- or element-scoped problem is downgraded and
// recorded on the returned Summary instead (§7).
func (c *Converter) Convert() (*Result, error) {
	textDoc, err := xmlin.ParseTextLayout(c.textLayout)
	if err != nil {
		return nil, fmt.Errorf("bookpack: parsing text layout: %w", err)
	}
	mediaDoc, err := xmlin.ParseMediaTable(c.mediaTable)
	if err != nil {
		return nil, fmt.Errorf("bookpack: parsing media/table document: %w", err)
	}

	textByPage := make(map[int]xmlin.TextLayoutPage, len(textDoc.Pages))
	var textPageNums []int
	for _, p := range textDoc.Pages {
		textByPage[p.Number] = p
		textPageNums = append(textPageNums, p.Number)
	}

	mediaByPage := make(map[int]xmlin.MediaTablePage, len(mediaDoc.Pages))
	var mediaPageNums, tablePageNums []int
	for _, p := range mediaDoc.Pages {
		mediaByPage[p.Number] = p
		if len(p.Media) > 0 {
			mediaPageNums = append(mediaPageNums, p.Number)
		}
		if len(p.Tables) > 0 {
			tablePageNums = append(tablePageNums, p.Number)
		}
	}

	pageNumbers := fusion.UnionPageNumbers(textPageNums, mediaPageNums, tablePageNums)
	if len(pageNumbers) == 0 {
		return nil, bookerr.ErrNoExtractableContent
	}

	// The Options values apply first; the Converter's own WithConcurrency
	// and WithPageTimeout settings take precedence when set.
	cfg := pipeline.DefaultConfig()
	if n := c.opts.WorkerLimit(); n > 0 {
		cfg.MaxConcurrency = n
	}
	if s := c.opts.PageTimeoutSeconds(); s > 0 {
		cfg.PageTimeout = time.Duration(s * float64(time.Second))
	}
	if c.concurrency > 0 {
		cfg.MaxConcurrency = c.concurrency
	}
	if c.pageTimeout > 0 {
		cfg.PageTimeout = c.pageTimeout
	}

	pageFunc := buildPageFunc(textByPage, mediaByPage, textDoc.Fonts, c.opts, c.refMap, c.mediaSource, c.bundle, c.log)
	pages, summary := pipeline.RunPages(context.Background(), pageNumbers, cfg, pageFunc)

	doc := pipeline.Finalize(pages, textDoc.Fonts, model.Metadata{})

	unified := docwriter.Write(doc, summary, c.log)

	docbook := promoteDocument(doc)

	c.log.Info("conversion completed",
		zap.Int("pages", doc.PageCount()),
		zap.Int("media", doc.MediaCount()),
		zap.Int("pages_downgraded", summary.PagesDowngraded),
		zap.Int("tables_filtered", summary.TablesFiltered),
	)

	return &Result{
		Document: doc,
		Unified:  unified,
		DocBook:  docbook,
		RefMap:   c.refMap,
		Summary:  summary,
		Sidecars: c.bundle.Files(),
	}, nil
}

// buildPageFunc closes over the parsed per-page inputs and returns the
// pipeline.PageFunc run by the worker pool for each page number (§5). Every
// per-page stage from row grouping through fusion happens here; the
// cross-page merge (layout.MergeAcrossPages) is deliberately excluded since
// it must run single-threaded after every page has finished (handled by
// pipeline.Finalize).
func buildPageFunc(textByPage map[int]xmlin.TextLayoutPage, mediaByPage map[int]xmlin.MediaTablePage, fonts *model.FontTable, opts config.Options, refMap *refmap.Map, mediaSource MediaSource, bundle *media.Bundle, log *zap.Logger) pipeline.PageFunc {
	scriptCfg := layout.DefaultScriptConfig()
	scriptCfg.MaxWidth = opts.ScriptMaxWidth()
	scriptCfg.MaxHeight = opts.ScriptMaxHeight()
	scriptCfg.MaxLen = opts.ScriptMaxLen()
	scriptCfg.SuperscriptTopDiff = opts.SuperscriptTopDiff()
	scriptCfg.SubscriptMaxTopDiff = opts.SubscriptMaxTopDiff()
	colCfg := layout.DefaultColumnConfig()

	return func(ctx context.Context, pageNumber int, summary *bookerr.Summary) (*model.Page, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tp, hasText := textByPage[pageNumber]
		mp, hasMedia := mediaByPage[pageNumber]

		page := &model.Page{Number: pageNumber, HasText: hasText, HasMedia: hasMedia}
		if hasText {
			page.HTMLWidth, page.HTMLHeight = tp.Width, tp.Height
			page.Fragments = make([]model.Fragment, len(tp.Fragments))
			copy(page.Fragments, tp.Fragments)
		} else {
			summary.Add(bookerr.Warning{Kind: bookerr.KindTextExtractorEmpty, Page: pageNumber, Detail: "no text-layout side for this page"})
		}
		if hasMedia {
			page.PDFWidth, page.PDFHeight = mp.Width, mp.Height
		}

		// §9 design note: transform at the earliest fusion boundary (C10
		// entry) and never propagate PDF-space rects beyond it. Resolving
		// dimensions first gives a media-only page stand-in HTML dimensions,
		// so the transform below has a target size for it too; a page with no
		// declared PDF size gets no transform.
		fusion.ResolvePageDimensions(page)

		fragments := layout.DetectScripts(page.Fragments, scriptCfg)
		fragments = layout.AssignColumns(fragments, page.HTMLWidth, colCfg)
		fragments = layout.AssignBlocks(fragments)
		page.Fragments = fragments

		medianHeight := medianFragmentHeight(fragments)
		rows := layout.GroupRows(fragments, opts.BaselineTolerance(medianHeight))
		merged := layout.MergePage(rows, fragments)
		page.Paragraphs = layout.AssembleParagraphs(pageNumber, merged, fonts, opts)

		sx, sy := page.ScaleFactors()
		mediaCandidates := mp.Media
		tableCandidates := mp.Tables
		if sx > 0 && sy > 0 {
			mediaCandidates = transformMediaCandidates(mediaCandidates, sx, sy)
			tableCandidates = transformTableCandidates(tableCandidates, sx, sy)
		} else if hasMedia {
			summary.CoordSkippedf(pageNumber, "page %d: missing PDF or HTML dimensions, coordinate transform skipped", pageNumber)
		}

		pageRect := model.NewBBoxWH(0, 0, page.HTMLWidth, page.HTMLHeight)

		if hasMedia {
			overlaid := make(map[string]int, len(mediaCandidates))
			candByID := make(map[string]xmlin.MediaCandidate, len(mediaCandidates))
			for _, cand := range mediaCandidates {
				overlaid[cand.ID] = cand.TextBlockCount
				candByID[cand.ID] = cand
			}
			page.Media = media.ExtractPage(pageNumber, mediaCandidates, pageRect, overlaid, opts, summary)
			for _, el := range page.Media {
				meta := map[string]string{"page": strconv.Itoa(pageNumber), "kind": el.Kind.String()}
				refMap.AddResource(el.ID, el.FileRef, meta)
				refMap.UpdateFinalName(el.ID, el.FileRef)
				renderSidecar(pageNumber, el, candByID[el.ID], mediaSource, bundle, log, summary)
			}

			captions := make([]tables.CaptionSource, 0, len(page.Paragraphs))
			for _, para := range page.Paragraphs {
				captions = append(captions, tables.CaptionSource{Text: para.Text(), Rect: para.BBox()})
			}
			page.Tables = tables.FilterCandidates(pageNumber, tableCandidates, captions, opts, summary)
		}

		// TransformToHTMLSpace is intentionally not called here: the
		// transform already happened above, before C8/C9 ever saw a
		// candidate rect, so nothing downstream still holds a PDF-space
		// value to convert.
		fusion.FilterOverlappingText(page, opts.RasterVectorOverlapThreshold())
		fusion.AssignReadingOrder(page)

		summary.ParagraphsEmitted += len(page.Paragraphs)
		return page, nil
	}
}

// renderSidecar renders el's sidecar file (§6) into bundle when a
// MediaSource is configured. A raster is re-encoded from its source bytes;
// a kept vector is rasterized from its own SVG description. Rendering
// failure never aborts the page — it downgrades to a MediaSidecarFailed
// warning, leaving the element's geometry and caption intact in the
// output.
func renderSidecar(pageNumber int, el *model.MediaElement, cand xmlin.MediaCandidate, mediaSource MediaSource, bundle *media.Bundle, log *zap.Logger, summary *bookerr.Summary) {
	if mediaSource == nil || cand.File == "" {
		return
	}
	raw, err := mediaSource(cand.File)
	if err != nil {
		summary.MediaSidecarFailedf(pageNumber, "media %s: reading source %q: %v", el.ID, cand.File, err)
		return
	}

	switch el.Kind {
	case model.Raster:
		bundle.Add(media.BuildRasterSidecar(sidecarFilename(el.FileRef, cand.File, raw), raw, log))
	case model.Vector:
		w, h := int(el.Rect.Width()), int(el.Rect.Height())
		sidecar, err := media.RasterizeVector(el.FileRef, raw, w, h, log)
		if err != nil {
			summary.MediaSidecarFailedf(pageNumber, "media %s: rasterizing vector region: %v", el.ID, err)
			return
		}
		bundle.Add(sidecar)
	}
}

// sidecarFilename refines el.FileRef's extension using the source bytes'
// real container format when sourceFile carried no extension for
// media.ExtractPage's stable-naming to go on (its fallback guess is always
// "png" in that case).
func sidecarFilename(fileRef, sourceFile string, raw []byte) string {
	if filepath.Ext(sourceFile) != "" {
		return fileRef
	}
	return strings.TrimSuffix(fileRef, ".png") + "." + media.SniffFormat(raw)
}

// transformMediaCandidates returns a copy of candidates with Rect
// transformed from PDF-space to HTML-space.
func transformMediaCandidates(candidates []xmlin.MediaCandidate, sx, sy float64) []xmlin.MediaCandidate {
	out := make([]xmlin.MediaCandidate, len(candidates))
	for i, c := range candidates {
		c.Rect = c.Rect.Transform(sx, sy)
		out[i] = c
	}
	return out
}

// transformTableCandidates returns a copy of candidates with Rect
// transformed from PDF-space to HTML-space.
func transformTableCandidates(candidates []xmlin.TableCandidate, sx, sy float64) []xmlin.TableCandidate {
	out := make([]xmlin.TableCandidate, len(candidates))
	for i, c := range candidates {
		c.Rect = c.Rect.Transform(sx, sy)
		out[i] = c
	}
	return out
}

func medianFragmentHeight(fragments []model.Fragment) float64 {
	if len(fragments) == 0 {
		return 0
	}
	heights := make([]float64, len(fragments))
	for i, f := range fragments {
		heights[i] = f.Height
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

// promoteDocument runs the structural promoter (C12) over doc: font-role
// classification, TOC-window and index-window detection, section nesting,
// and DocBook emission.
func promoteDocument(doc *model.Document) *etree.Document {
	var figureAndTableRects []model.BBox
	for _, page := range doc.Pages {
		for _, m := range page.Media {
			figureAndTableRects = append(figureAndTableRects, m.Rect)
		}
		for _, t := range page.Tables {
			figureAndTableRects = append(figureAndTableRects, t.Rect)
		}
	}

	roles := promote.ClassifyFontRoles(doc, figureAndTableRects)

	tocFirst, tocLast, hasTOC := promote.DetectTOCWindow(doc)
	if hasTOC {
		promote.AssignTOCRole(roles, doc, tocFirst, tocLast)
	}

	indexFirst, indexLast, hasIndex := promote.DetectIndexWindow(doc)

	root := promote.BuildSections(doc, roles, tocFirst, tocLast, hasTOC, indexFirst, indexLast, hasIndex)
	return promote.Emit(root, doc.Metadata)
}
