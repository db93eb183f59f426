package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkdrift/inkdrift/internal/types"
)

// HistoryLister reads a session's persisted question log.
type HistoryLister interface {
	ListBySession(ctx context.Context, sessionID string) (types.QuestionHistory, error)
}

// historyResponse is the GET /sessions/{sessionId}/questions reply.
type historyResponse struct {
	SessionID string            `json:"sessionId"`
	Questions []historyItemView `json:"questions"`
}

type historyItemView struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	CoverageTag string `json:"coverageTag,omitempty"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	AskedAt     string `json:"askedAt"`
}

// HistoryHandler serves the persisted question log of a completed session.
type HistoryHandler struct {
	items HistoryLister
}

// NewHistoryHandler returns a HistoryHandler.
func NewHistoryHandler(items HistoryLister) *HistoryHandler {
	return &HistoryHandler{items: items}
}

func (h *HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	history, err := h.items.ListBySession(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load question history", "error", err.Error(), "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "failed to load question history")
		return
	}

	questions := make([]historyItemView, 0, len(history))
	for _, item := range history {
		questions = append(questions, historyItemView{
			ID:          item.ID,
			Text:        item.Text,
			CoverageTag: item.CoverageTag,
			Kind:        string(item.Kind),
			Status:      string(item.Status),
			AskedAt:     item.AskedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Questions: questions})
}
