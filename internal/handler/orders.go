package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"novareg/internal/registry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListOrdersHandler serves the registry with optional q, vendor and view
// query filters.
func ListOrdersHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := registry.View(r.URL.Query().Get("view"))
		switch view {
		case "", registry.ViewAll, registry.ViewPending, registry.ViewLate:
		default:
			http.Error(w, "unknown view", http.StatusBadRequest)
			return
		}
		orders := ledger.Search(r.URL.Query().Get("q"), r.URL.Query().Get("vendor"), view)
		writeJSON(w, http.StatusOK, map[string]any{
			"orders":  orders,
			"total":   ledger.Size(),
			"vendors": ledger.Vendors(),
		})
	}
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func UpdateDescriptionHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req descriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err := ledger.UpdateDescription(chi.URLParam(r, "id"), req.Description)
		switch {
		case errors.Is(err, registry.ErrNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func DeleteOrderHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := ledger.Delete(chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, registry.ErrNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}
