// regimport imports CSV files into a registry data directory without
// running the server. Useful for seeding and for bulk backfills.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"novareg/internal/ingest"
	"novareg/internal/reconcile"
	"novareg/internal/registry"
)

func main() {
	var (
		dataDir    string
		backend    string
		duplicates string
		force      bool
	)
	flag.StringVar(&dataDir, "data", "./data", "registry data directory")
	flag.StringVar(&backend, "state", "pebble", "state backend: pebble|badger")
	flag.StringVar(&duplicates, "duplicates", "skip", "duplicate decision: keep|skip")
	flag.BoolVar(&force, "force", false, "bypass the processed-file gate")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: regimport [flags] file.csv ...")
	}
	decision := reconcile.Decision(duplicates)
	if !decision.Valid() {
		log.Fatalf("unknown duplicate decision %q", duplicates)
	}

	if err := run(dataDir, backend, decision, force, flag.Args()); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(dataDir, backend string, decision reconcile.Decision, force bool, paths []string) error {
	var store registry.Store
	var err error
	switch backend {
	case "badger":
		store, err = registry.NewBadgerStore(filepath.Join(dataDir, "badger"))
	default:
		store, err = registry.NewPebbleStore(filepath.Join(dataDir, "pebble"))
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", backend, err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := registry.NewLedger(store, logger, nil, nil)
	if err := ledger.Load(); err != nil {
		return err
	}

	var files []ingest.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, ingest.File{Name: filepath.Base(path), MIME: "text/csv", Data: data})
	}

	pipe := ingest.NewPipeline(ledger, nil, logger, nil)
	out, err := pipe.Run(context.Background(), files, force)
	if err != nil {
		return err
	}
	resolved := 0
	if out.HeldDuplicates > 0 {
		resolved, err = ledger.ResolveHeld(decision)
		if err != nil {
			return err
		}
	}

	fmt.Printf("added %d orders, %d duplicates resolved as %s, registry now %d\n",
		out.Added+resolved, out.HeldDuplicates, decision, ledger.Size())
	for _, f := range out.SkippedFiles {
		fmt.Printf("skipped %s (already processed, use -force to repeat)\n", f)
	}
	for _, f := range out.FailedFiles {
		fmt.Printf("failed %s\n", f)
	}
	return nil
}
