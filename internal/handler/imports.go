package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"novareg/internal/ingest"
	"novareg/internal/reconcile"
	"novareg/internal/registry"
)

// maxUploadBytes bounds one multipart import request.
const maxUploadBytes = 64 << 20

// ImportHandler accepts a multipart batch of source files and runs the
// import pipeline. force=1 bypasses the processed-file gate.
func ImportHandler(pipe *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		var files []ingest.File
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				http.Error(w, "read upload", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, "read upload", http.StatusBadRequest)
				return
			}
			files = append(files, ingest.File{
				Name: fh.Filename,
				MIME: fh.Header.Get("Content-Type"),
				Data: data,
			})
		}
		if len(files) == 0 {
			http.Error(w, "no files", http.StatusBadRequest)
			return
		}

		force := r.FormValue("force") == "1"
		out, err := pipe.Run(r.Context(), files, force)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type resolveRequest struct {
	Decision string `json:"decision"`
}

// ResolveImportHandler applies the keep-or-skip decision to the held
// duplicate set.
func ResolveImportHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		d := reconcile.Decision(req.Decision)
		if !d.Valid() {
			http.Error(w, "decision must be keep or skip", http.StatusBadRequest)
			return
		}
		added, err := ledger.ResolveHeld(d)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"added": added})
	}
}

// HeldImportsHandler lists the duplicates awaiting a decision.
func HeldImportsHandler(ledger *registry.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"held": ledger.Held()})
	}
}
