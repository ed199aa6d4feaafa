package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"novareg/internal/normalize"
	"novareg/internal/registry"
)

type fakeExtractor struct {
	recs map[string][]normalize.Record
	fail map[string]bool
}

func (f *fakeExtractor) Extract(_ context.Context, data []byte, _ string) ([]normalize.Record, error) {
	if f.fail[string(data)] {
		return nil, errors.New("extraction failed")
	}
	return f.recs[string(data)], nil
}

func testPipeline(t *testing.T, ext Extractor) (*Pipeline, *registry.Ledger) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := registry.NewLedger(registry.NewMemoryStore(), log, nil, nil)
	if err := l.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewPipeline(l, ext, log, nil), l
}

func TestPipeline_CSVAndExtracted(t *testing.T) {
	ext := &fakeExtractor{recs: map[string][]normalize.Record{
		"pdf-bytes": {{VendorCode: "gglh", CustomerName: "Jones"}},
	}}
	p, l := testPipeline(t, ext)

	out, err := p.Run(context.Background(), []File{
		{Name: "orders.csv", MIME: "text/csv", Data: []byte("Vendor,Customer\nSUSM,Smith\n")},
		{Name: "scan.pdf", MIME: "application/pdf", Data: []byte("pdf-bytes")},
	}, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Added != 2 || out.HeldDuplicates != 0 {
		t.Fatalf("outcome: %+v", out)
	}
	got := l.Orders()
	if len(got) != 2 || got[0].VendorCode != "SUSM" || got[1].VendorCode != "GGLH" {
		t.Fatalf("orders: %+v", got)
	}
	// line numbers run across files in one batch
	if got[0].LineNumber != "1" || got[1].LineNumber != "2" {
		t.Fatalf("line numbers: %s %s", got[0].LineNumber, got[1].LineNumber)
	}
}

func TestPipeline_FailedFileContributesZero(t *testing.T) {
	ext := &fakeExtractor{
		recs: map[string][]normalize.Record{"good": {{VendorCode: "a", CustomerName: "b"}}},
		fail: map[string]bool{"bad": true},
	}
	p, l := testPipeline(t, ext)

	out, err := p.Run(context.Background(), []File{
		{Name: "bad.pdf", Data: []byte("bad")},
		{Name: "good.pdf", Data: []byte("good")},
	}, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Added != 1 {
		t.Fatalf("added=%d", out.Added)
	}
	if len(out.FailedFiles) != 1 || out.FailedFiles[0] != "bad.pdf" {
		t.Fatalf("failed: %v", out.FailedFiles)
	}
	// a failed file is not marked processed; retry stays possible
	if l.IsProcessed("bad.pdf") {
		t.Fatal("failed file entered the processed log")
	}
	if !l.IsProcessed("good.pdf") {
		t.Fatal("good file missing from the processed log")
	}
}

func TestPipeline_ProcessedGateAndForce(t *testing.T) {
	p, l := testPipeline(t, nil)
	csv := File{Name: "orders.csv", MIME: "text/csv", Data: []byte("Vendor,Customer\nSUSM,Smith\n")}

	if _, err := p.Run(context.Background(), []File{csv}, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, err := p.Run(context.Background(), []File{csv}, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out.Added != 0 || len(out.SkippedFiles) != 1 {
		t.Fatalf("gate failed: %+v", out)
	}

	// force bypasses the gate; the duplicate is held, not auto-added
	out, err = p.Run(context.Background(), []File{csv}, true)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if out.Added != 0 || out.HeldDuplicates != 1 {
		t.Fatalf("forced outcome: %+v", out)
	}
	if l.Size() != 1 {
		t.Fatalf("size=%d", l.Size())
	}
}

// failingStore rejects writes to one slot, simulating a persistence fault
// mid-import.
type failingStore struct {
	registry.Store
	failSlot string
}

func (f *failingStore) Set(slot string, value []byte) error {
	if slot == f.failSlot {
		return errors.New("write failed")
	}
	return f.Store.Set(slot, value)
}

func TestPipeline_FailedBatchLeavesGateOpen(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &failingStore{Store: registry.NewMemoryStore(), failSlot: registry.SlotOrders}
	l := registry.NewLedger(store, log, nil, nil)
	if err := l.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	p := NewPipeline(l, nil, log, nil)

	csv := File{Name: "orders.csv", MIME: "text/csv", Data: []byte("Vendor,Customer\nSUSM,Smith\n")}
	if _, err := p.Run(context.Background(), []File{csv}, false); err == nil {
		t.Fatal("expected error from failing batch persistence")
	}
	// the file never reconciled, so a retry must not be gated
	if l.IsProcessed("orders.csv") {
		t.Fatal("file entered the processed log despite the failed batch")
	}
}

func TestPipeline_NonCSVWithoutExtractorFails(t *testing.T) {
	p, _ := testPipeline(t, nil)
	out, err := p.Run(context.Background(), []File{{Name: "scan.pdf", Data: []byte("x")}}, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.FailedFiles) != 1 {
		t.Fatalf("outcome: %+v", out)
	}
}
