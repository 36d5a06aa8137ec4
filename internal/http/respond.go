package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// writeJSON serializes payload with the given status. Encoding failures
// are logged; the status line is already on the wire by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

// writeError maps service errors onto the JSON error surface:
// validation failures become 422 with per-field messages, missing
// records become 404, anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs core.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, r, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	if errors.Is(err, ledger.ErrNotFound) {
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
	writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// writeBadRequest is used for malformed payloads, before validation
// even runs.
func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": msg})
}
