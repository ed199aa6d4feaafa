package handler

import (
	"net/http"

	"novareg/internal/analytics"
	"novareg/internal/insights"
	"novareg/internal/normalize"
	"novareg/internal/registry"
)

func AnalyticsHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analytics.Compute(ledger.Orders()))
	}
}

// InsightsHandler projects the registry and asks the summarization
// collaborator for a report. client may be nil when the collaborator is not
// configured.
func InsightsHandler(ledger *registry.Ledger, client *insights.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			http.Error(w, "insight service not configured", http.StatusServiceUnavailable)
			return
		}
		orders := ledger.Orders()
		if len(orders) == 0 {
			http.Error(w, "registry is empty", http.StatusBadRequest)
			return
		}
		rep, err := client.Report(r.Context(), insights.Project(orders))
		if err != nil {
			http.Error(w, "insight service failed, retry later", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func ExportCSVHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		w.Write([]byte(normalize.ExportCSV(ledger.Orders())))
	}
}

func ResetHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ledger.Reset(); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
