package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inkdrift/inkdrift/internal/profile"
	"github.com/inkdrift/inkdrift/internal/types"
)

// SessionArchiver records the completed session and indexes its snippet
// for later recall.
type SessionArchiver interface {
	Archive(ctx context.Context, sessionID, userID, transcript string, summary types.SessionSummary) error
}

// profileMemoryRequest is the POST /profile-memory body.
type profileMemoryRequest struct {
	SessionID  string               `json:"sessionId"`
	UserID     string               `json:"userId,omitempty"`
	Transcript string               `json:"transcript"`
	Summary    types.SessionSummary `json:"summary"`
}

// profileMemoryResponse is the POST /profile-memory reply.
type profileMemoryResponse struct {
	Applied        bool        `json:"applied"`
	Reason         string      `json:"reason"`
	UpdatedProfile profileView `json:"updatedProfile"`
	SessionID      string      `json:"sessionId"`
}

type profileView struct {
	DisplayName string   `json:"displayName"`
	Tone        string   `json:"tone"`
	Proactivity string   `json:"proactivity"`
	AvoidTopics []string `json:"avoidTopics"`
}

// ProfileMemoryHandler serves end-of-session profile merges.
type ProfileMemoryHandler struct {
	merger   *profile.Merger
	archiver SessionArchiver
}

// NewProfileMemoryHandler returns a ProfileMemoryHandler. archiver may be
// nil.
func NewProfileMemoryHandler(merger *profile.Merger, archiver SessionArchiver) *ProfileMemoryHandler {
	return &ProfileMemoryHandler{merger: merger, archiver: archiver}
}

func (h *ProfileMemoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req profileMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	outcome, err := h.merger.Merge(r.Context(), profile.MergeInput{
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		Transcript: req.Transcript,
		Summary:    req.Summary,
	})
	if err != nil {
		slog.Error("profile memory merge failed", "error", err.Error(), "session_id", req.SessionID)
		writeError(w, http.StatusInternalServerError, "merge failed")
		return
	}

	// Archiving is best effort; the merge result is already durable.
	if h.archiver != nil && outcome.Reason != profile.ReasonDuplicateSession {
		if err := h.archiver.Archive(r.Context(), req.SessionID, req.UserID, req.Transcript, req.Summary); err != nil {
			slog.Warn("failed to archive session", "error", err.Error(), "session_id", req.SessionID)
		}
	}

	settings := outcome.Profile.Settings()
	writeJSON(w, http.StatusOK, profileMemoryResponse{
		Applied: outcome.Applied,
		Reason:  outcome.Reason,
		UpdatedProfile: profileView{
			DisplayName: outcome.Profile.DisplayName,
			Tone:        string(settings.Tone),
			Proactivity: string(settings.Proactivity),
			AvoidTopics: settings.AvoidTopics,
		},
		SessionID: outcome.SessionID,
	})
}
