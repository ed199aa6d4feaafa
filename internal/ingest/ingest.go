// Package ingest runs the multi-file import pipeline: gate against the
// processed-file log, parse or extract each file, normalize, then reconcile
// the accumulated queue against the registry in one pass.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"novareg/internal/metrics"
	"novareg/internal/model"
	"novareg/internal/normalize"
	"novareg/internal/registry"
)

var errNoExtractor = errors.New("no extractor configured for non-CSV file")

// Extractor turns a non-CSV file into raw records. Satisfied by
// extract.Client.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mime string) ([]normalize.Record, error)
}

// File is one uploaded source document.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Outcome summarizes one pipeline run.
type Outcome struct {
	Added          int      `json:"added"`
	HeldDuplicates int      `json:"heldDuplicates"`
	SkippedFiles   []string `json:"skippedFiles,omitempty"`
	FailedFiles    []string `json:"failedFiles,omitempty"`
}

type Pipeline struct {
	ledger *registry.Ledger
	ext    Extractor
	log    *slog.Logger
	met    *metrics.Registry
}

// NewPipeline wires the pipeline. ext may be nil, in which case only CSV
// files import and everything else fails per-file. met may be nil.
func NewPipeline(ledger *registry.Ledger, ext Extractor, log *slog.Logger, met *metrics.Registry) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{ledger: ledger, ext: ext, log: log, met: met}
}

// Run processes the files sequentially, accumulating one queue of
// normalized orders, and reconciles the queue in a single pass. A file in
// the processed log skips unless force is set. A file that fails to parse
// or extract contributes zero records and the run continues; failure of one
// file never voids the others.
func (p *Pipeline) Run(ctx context.Context, files []File, force bool) (*Outcome, error) {
	out := &Outcome{}
	var queue []model.Order
	var ingested []string
	base := p.ledger.Size()

	for _, f := range files {
		if !force && p.ledger.IsProcessed(f.Name) {
			p.log.Info("file already processed, skipping", "file", f.Name)
			out.SkippedFiles = append(out.SkippedFiles, f.Name)
			continue
		}

		orders, err := p.ingestFile(ctx, f, base+len(queue))
		if err != nil {
			p.log.Error("file failed, contributes zero records", "file", f.Name, "error", err)
			out.FailedFiles = append(out.FailedFiles, f.Name)
			if p.met != nil {
				p.met.ExtractionFailures.Inc()
			}
			continue
		}
		queue = append(queue, orders...)
		ingested = append(ingested, f.Name)
	}

	added, held, err := p.ledger.ImportBatch(queue)
	if err != nil {
		return nil, err
	}
	// Mark only after the batch landed. A file in the processed log whose
	// records never reconciled would silently block its own retry.
	for _, name := range ingested {
		if err := p.ledger.MarkProcessed(name); err != nil {
			return nil, err
		}
	}
	out.Added = added
	out.HeldDuplicates = held
	return out, nil
}

// ingestFile parses CSV locally and routes everything else to the
// extractor. lineBase seeds the line-number counter past the registry and
// the queue so far.
func (p *Pipeline) ingestFile(ctx context.Context, f File, lineBase int) ([]model.Order, error) {
	if isCSV(f) {
		return normalize.ParseCSV(string(f.Data), lineBase), nil
	}
	if p.ext == nil {
		return nil, errNoExtractor
	}
	start := time.Now()
	recs, err := p.ext.Extract(ctx, f.Data, f.MIME)
	if p.met != nil {
		p.met.ExtractLatencySec.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	nrm := normalize.NewNormalizer(lineBase, "rec")
	var orders []model.Order
	dropped := 0
	for _, r := range recs {
		o, ok := nrm.Clean(r)
		if !ok {
			dropped++
			continue
		}
		orders = append(orders, o)
	}
	if dropped > 0 {
		p.log.Info("dropped unusable records", "file", f.Name, "dropped", dropped)
		if p.met != nil {
			p.met.RecordsDropped.Add(float64(dropped))
		}
	}
	return orders, nil
}

func isCSV(f File) bool {
	if strings.Contains(strings.ToLower(f.MIME), "csv") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".csv")
}
