// Package pipeline runs the per-page stages of the conversion across a
// bounded worker pool and stitches the results back into one ordered
// document. The worker-pool shape — a buffered channel used as a
// semaphore, a WaitGroup, a mutex guarding shared aggregation state, and
// a pre-sized results slice indexed by input position — is grounded on
// antflydb-antfly-go/evalaf/eval/runner.go's runParallel, generalized
// from "evaluate one example" to "fuse one page" (§5).
package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/layout"
	"github.com/tsawler/bookpack/model"
)

// Config bounds the worker pool and per-page deadline.
type Config struct {
	MaxConcurrency int
	PageTimeout    time.Duration
}

// DefaultConfig sizes the pool to available cores and gives each page a
// generous but bounded deadline.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: runtime.NumCPU(),
		PageTimeout:    30 * time.Second,
	}
}

// PageFunc runs every per-page stage (layout, media/table fusion) for one
// page number, recording non-fatal diagnostics on the per-worker summary
// it's handed. A PageFunc that returns an error downgrades its page
// rather than aborting the run.
type PageFunc func(ctx context.Context, pageNumber int, summary *bookerr.Summary) (*model.Page, error)

// RunPages dispatches fn across pageNumbers with up to cfg.MaxConcurrency
// workers in flight at once. Each page gets its own cfg.PageTimeout
// deadline derived from ctx; a page that times out or errors is
// downgraded to a minimal stand-in page (never dropped — §4's failure
// semantics: "Page-level errors ... fall through to image-only
// handling") and the page is marked with a PageTimeout/PageRenderFailed
// warning on the returned summary. Results are returned in ascending
// page-number order, regardless of the order of pageNumbers or of
// completion order.
func RunPages(ctx context.Context, pageNumbers []int, cfg Config, fn PageFunc) ([]*model.Page, *bookerr.Summary) {
	sorted := make([]int, len(pageNumbers))
	copy(sorted, pageNumbers)
	sort.Ints(sorted)

	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	results := make([]*model.Page, len(sorted))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := bookerr.NewSummary()

	for i, pageNumber := range sorted {
		wg.Add(1)
		go func(idx, pageNumber int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			pageCtx, cancel := context.WithTimeout(ctx, cfg.PageTimeout)
			defer cancel()

			pageSummary := bookerr.NewSummary()
			page, err := fn(pageCtx, pageNumber, pageSummary)

			if err != nil {
				page = downgradePage(pageNumber, err, pageSummary)
			}
			pageSummary.PagesProcessed++

			mu.Lock()
			results[idx] = page
			total.Merge(pageSummary)
			mu.Unlock()
		}(i, pageNumber)
	}

	wg.Wait()

	return results, total
}

// downgradePage records the failure and returns a minimal stand-in page
// so the page number is never simply missing from the output.
func downgradePage(pageNumber int, err error, summary *bookerr.Summary) *model.Page {
	if errors.Is(err, context.DeadlineExceeded) {
		summary.Add(bookerr.Warning{Kind: bookerr.KindPageTimeout, Page: pageNumber, Detail: err.Error()})
	} else {
		summary.Add(bookerr.Warning{Kind: bookerr.KindPageRenderFailed, Page: pageNumber, Detail: err.Error()})
	}
	return &model.Page{Number: pageNumber}
}

// Finalize orders pages by page number, applies the single-threaded
// cross-page paragraph merge pass (which must run after every page has
// finished its own stages, since it reaches across page boundaries) and
// assembles the final ordered Document.
func Finalize(pages []*model.Page, fonts *model.FontTable, meta model.Metadata) *model.Document {
	ordered := make([]*model.Page, len(pages))
	copy(ordered, pages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	layout.MergeAcrossPages(ordered, fonts)

	doc := model.NewDocument()
	doc.Metadata = meta
	doc.Fonts = fonts
	for _, p := range ordered {
		doc.AddPage(p)
	}
	return doc
}
