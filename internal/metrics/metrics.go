package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	ImportsTotal       prometheus.Counter
	RecordsAccepted    prometheus.Counter
	RecordsDropped     prometheus.Counter
	DuplicatesHeld     prometheus.Counter
	DuplicatesKept     prometheus.Counter
	DuplicatesSkipped  prometheus.Counter
	ExtractionFailures prometheus.Counter
	Deletes            prometheus.Counter
	Restores           prometheus.Counter
	RegistrySize       prometheus.Gauge
	ExtractLatencySec  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	imports := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_imports_total"})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_records_accepted_total"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_records_dropped_total"})
	held := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_duplicates_held_total"})
	kept := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_duplicates_kept_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_duplicates_skipped_total"})
	extractFail := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_extraction_failures_total"})
	deletes := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_deletes_total"})
	restores := prometheus.NewCounter(prometheus.CounterOpts{Name: "registry_restores_total"})
	size := prometheus.NewGauge(prometheus.GaugeOpts{Name: "registry_orders"})
	extractLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "registry_extract_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(imports, accepted, dropped, held, kept, skipped, extractFail, deletes, restores, size, extractLatency)
	return &Registry{
		reg:                r,
		ImportsTotal:       imports,
		RecordsAccepted:    accepted,
		RecordsDropped:     dropped,
		DuplicatesHeld:     held,
		DuplicatesKept:     kept,
		DuplicatesSkipped:  skipped,
		ExtractionFailures: extractFail,
		Deletes:            deletes,
		Restores:           restores,
		RegistrySize:       size,
		ExtractLatencySec:  extractLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
