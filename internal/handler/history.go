package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"novareg/internal/registry"
)

func GetHistoryHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"history": ledger.History()})
	}
}

func RestoreOrderHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := ledger.Restore(chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, registry.ErrNotFound):
			http.Error(w, "order not in history", http.StatusNotFound)
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}
