package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/cognitio/internal/apperr"
	"github.com/starford/cognitio/internal/cheatsheet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to status codes. Unknown errors are logged
// under op and reported as 500.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrOutsideRoots):
		writeJSON(w, http.StatusForbidden, errorBody("path is outside configured cheatsheet roots"))
	case errors.Is(err, apperr.ErrNoEditor):
		writeJSON(w, http.StatusBadRequest, errorBody("no editor configured"))
	case errors.Is(err, cheatsheet.ErrNoIndex):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index is not available"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
