package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"novareg/internal/backup"
	"novareg/internal/changelog"
	"novareg/internal/config"
	"novareg/internal/extract"
	"novareg/internal/handler"
	"novareg/internal/ingest"
	"novareg/internal/insights"
	"novareg/internal/metrics"
	"novareg/internal/registry"
)

func main() {
	cfg := config.New()

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open state backend", "backend", cfg.StateBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.RestoreLatest {
		m, err := backup.RestoreLatest(cfg.BackupDir, store)
		if err != nil {
			slog.Error("backup restore failed", "error", err)
			os.Exit(1)
		}
		slog.Info("restored backup", "id", m.BackupID)
	}

	audit, err := openAudit(cfg)
	if err != nil {
		slog.Error("failed to open audit feed", "sink", cfg.ChangelogSink, "error", err)
		os.Exit(1)
	}

	met := metrics.NewRegistry()
	ledger := registry.NewLedger(store, slog.Default(), audit, met)
	if err := ledger.Load(); err != nil {
		slog.Error("failed to load registry", "error", err)
		os.Exit(1)
	}
	slog.Info("registry loaded", "orders", ledger.Size())

	var extractor ingest.Extractor
	if cfg.ExtractAddress != "" {
		extractor = extract.NewClient(cfg.ExtractAddress)
	}
	pipe := ingest.NewPipeline(ledger, extractor, slog.Default(), met)

	var insightClient *insights.Client
	if cfg.InsightAddress != "" {
		insightClient = insights.NewClient(cfg.InsightAddress)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/orders", handler.ListOrdersHandler(ledger))
	r.Patch("/api/orders/{id}/description", handler.UpdateDescriptionHandler(ledger))
	r.Delete("/api/orders/{id}", handler.DeleteOrderHandler(ledger))
	r.Get("/api/history", handler.GetHistoryHandler(ledger))
	r.Post("/api/history/{id}/restore", handler.RestoreOrderHandler(ledger))
	r.Post("/api/import", handler.ImportHandler(pipe))
	r.Get("/api/import/held", handler.HeldImportsHandler(ledger))
	r.Post("/api/import/resolve", handler.ResolveImportHandler(ledger))
	r.Get("/api/analytics", handler.AnalyticsHandler(ledger))
	r.Post("/api/insights", handler.InsightsHandler(ledger, insightClient))
	r.Get("/api/export.csv", handler.ExportCSVHandler(ledger))
	r.Post("/api/reset", handler.ResetHandler(ledger))
	r.Get("/healthz", handler.HealthHandler())
	r.Method(http.MethodGet, "/metrics", met.Handler())

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "backend", cfg.StateBackend)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	if id, err := backup.NewWriter(cfg.BackupDir).Write(store); err != nil {
		slog.Error("shutdown backup failed", "error", err)
	} else {
		slog.Info("shutdown backup written", "id", id)
	}
	slog.Info("server stopped")
}

func openStore(cfg *config.Config) (registry.Store, error) {
	switch cfg.StateBackend {
	case "memory":
		return registry.NewMemoryStore(), nil
	case "badger":
		return registry.NewBadgerStore(filepath.Join(cfg.DataDir, "badger"))
	default:
		return registry.NewPebbleStore(filepath.Join(cfg.DataDir, "pebble"))
	}
}

func openAudit(cfg *config.Config) (changelog.Writer, error) {
	switch cfg.ChangelogSink {
	case "off":
		return changelog.Nop{}, nil
	case "kafka":
		return changelog.NewKafkaWriter(cfg.KafkaBootstrap, cfg.TopicChangelog), nil
	case "both":
		fw, err := changelog.NewFileWriter(cfg.ChangelogDir, "registry.jsonl")
		if err != nil {
			return nil, err
		}
		return changelog.NewMultiWriter(fw, changelog.NewKafkaWriter(cfg.KafkaBootstrap, cfg.TopicChangelog)), nil
	default:
		return changelog.NewFileWriter(cfg.ChangelogDir, "registry.jsonl")
	}
}
