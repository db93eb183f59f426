// Package handler exposes the question and profile-memory HTTP API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// NewMux routes the service API.
func NewMux(questions *QuestionHandler, profileMemory *ProfileMemoryHandler, history *HistoryHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /questions", questions.Handle)
	mux.HandleFunc("POST /profile-memory", profileMemory.Handle)
	mux.HandleFunc("GET /sessions/{sessionId}/questions", history.Handle)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
