package refmap

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestAddAndUpdateFinalName(t *testing.T) {
	m := New()
	m.AddResource("page1_img1.png", "intermediate_001.png", map[string]string{"page": "1"})
	m.UpdateFinalName("page1_img1.png", "figure-1.png")

	e, ok := m.Lookup("page1_img1.png")
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if e.Intermediate != "intermediate_001.png" || e.Final != "figure-1.png" {
		t.Errorf("got %+v", e)
	}
}

func TestUpdateFinalNameWithoutPriorAdd(t *testing.T) {
	m := New()
	m.UpdateFinalName("never-added.png", "final.png")
	e, ok := m.Lookup("never-added.png")
	if !ok || e.Final != "final.png" {
		t.Errorf("expected UpdateFinalName to create an entry even without AddResource, got %+v ok=%v", e, ok)
	}
}

func TestExportIsSortedAndConsistent(t *testing.T) {
	m := New()
	m.AddResource("b.png", "ib.png", nil)
	m.AddResource("a.png", "ia.png", nil)

	out := m.Export()
	if len(out) != 2 || out[0].Original != "a.png" || out[1].Original != "b.png" {
		t.Errorf("export not sorted: %+v", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	m := New()
	m.AddResource("orig.png", "mid.png", map[string]string{"k": "v"})
	m.UpdateFinalName("orig.png", "final.png")

	path := filepath.Join(t.TempDir(), "refmap.json")
	if err := m.ExportToFile(path); err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}

	m2 := New()
	if err := m2.ImportFromFile(path); err != nil {
		t.Fatalf("ImportFromFile: %v", err)
	}
	e, ok := m2.Lookup("orig.png")
	if !ok || e.Final != "final.png" || e.Meta["k"] != "v" {
		t.Errorf("round-tripped entry mismatch: %+v", e)
	}
}

func TestImportFromFileMissingIsNonFatal(t *testing.T) {
	m := New()
	err := m.ImportFromFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	// Caller contract: an error here disables rename tracking but must not
	// abort the pipeline; the map must remain usable afterward.
	m.AddResource("x.png", "y.png", nil)
	if m.Len() != 1 {
		t.Errorf("map should remain usable after a failed import")
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := NewSyntheticID()
			m.AddResource(id, id+"-mid", nil)
		}(i)
	}
	wg.Wait()
	if m.Len() != 50 {
		t.Errorf("Len() = %d, want 50", m.Len())
	}
}
