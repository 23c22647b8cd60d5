package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsawler/bookpack/bookerr"
	"github.com/tsawler/bookpack/model"
)

func TestRunPagesPreservesOrderRegardlessOfCompletionOrder(t *testing.T) {
	pages := []int{5, 1, 3, 2, 4}
	fn := func(ctx context.Context, pageNumber int, summary *bookerr.Summary) (*model.Page, error) {
		// Reverse-numbered pages sleep longer, so completion order is the
		// opposite of ascending page-number order.
		time.Sleep(time.Duration(5-pageNumber) * time.Millisecond)
		return &model.Page{Number: pageNumber}, nil
	}

	cfg := Config{MaxConcurrency: 4, PageTimeout: time.Second}
	results, summary := RunPages(context.Background(), pages, cfg, fn)

	want := []int{1, 2, 3, 4, 5}
	for i, p := range results {
		if p.Number != want[i] {
			t.Errorf("results[%d].Number = %d, want %d", i, p.Number, want[i])
		}
	}
	if summary.PagesProcessed != 5 {
		t.Errorf("PagesProcessed = %d, want 5", summary.PagesProcessed)
	}
}

func TestRunPagesDowngradesTimeoutInsteadOfDropping(t *testing.T) {
	fn := func(ctx context.Context, pageNumber int, summary *bookerr.Summary) (*model.Page, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	cfg := Config{MaxConcurrency: 2, PageTimeout: 10 * time.Millisecond}
	results, summary := RunPages(context.Background(), []int{1}, cfg, fn)

	if len(results) != 1 || results[0] == nil {
		t.Fatalf("expected a stand-in page, got %v", results)
	}
	if results[0].Number != 1 {
		t.Errorf("stand-in page number = %d, want 1", results[0].Number)
	}
	if summary.PagesDowngraded != 1 {
		t.Errorf("PagesDowngraded = %d, want 1", summary.PagesDowngraded)
	}
}

func TestRunPagesRecordsNonTimeoutErrorAsRenderFailed(t *testing.T) {
	boom := errors.New("boom")
	fn := func(ctx context.Context, pageNumber int, summary *bookerr.Summary) (*model.Page, error) {
		return nil, boom
	}

	cfg := Config{MaxConcurrency: 1, PageTimeout: time.Second}
	results, summary := RunPages(context.Background(), []int{1}, cfg, fn)

	if results[0] == nil || results[0].Number != 1 {
		t.Fatalf("expected a stand-in page for page 1, got %v", results[0])
	}
	found := false
	for _, w := range summary.Warnings {
		if w.Kind == bookerr.KindPageRenderFailed {
			found = true
		}
	}
	if !found {
		t.Error("expected a PageRenderFailed warning")
	}
}

func TestFinalizeAssemblesDocumentInPageOrder(t *testing.T) {
	fonts := model.NewFontTable()
	pages := []*model.Page{
		{Number: 2},
		{Number: 1},
	}
	doc := Finalize(pages, fonts, model.Metadata{Title: "Book"})
	if doc.Metadata.Title != "Book" {
		t.Errorf("metadata not carried through")
	}
	if doc.PageCount() != 2 {
		t.Fatalf("got %d pages, want 2", doc.PageCount())
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("page order = %d, %d, want 1, 2", doc.Pages[0].Number, doc.Pages[1].Number)
	}
}
