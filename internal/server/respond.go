package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stupside/mp3relay/internal/apperr"
)

// errorResponse is the JSON body of every error answered by the API.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// dataResponse wraps successful API payloads.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing json response", "error", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, short, message string) {
	writeJSON(w, status, errorResponse{Error: short, Message: message})
}

// fail answers err with the status of its Kind. short labels the failed
// operation; bad input is always reported as "Bad Request".
func fail(w http.ResponseWriter, r *http.Request, short string, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if kind == apperr.KindBadInput {
		short = http.StatusText(http.StatusBadRequest)
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request failed", "path", r.URL.Path, "kind", kind, "reason", apperr.ReasonOf(err), "error", err)

	writeJSON(w, status, errorResponse{
		Error:   short,
		Message: apperr.Message(err),
		Reason:  string(apperr.ReasonOf(err)),
	})
}
