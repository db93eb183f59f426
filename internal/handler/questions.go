package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inkdrift/inkdrift/internal/question"
	"github.com/inkdrift/inkdrift/internal/types"
)

// SnippetRecaller recalls past-session snippets for prompt context.
type SnippetRecaller interface {
	Recall(ctx context.Context, userID, query string) ([]types.SessionSnippet, error)
}

// questionRequest is the POST /questions body.
type questionRequest struct {
	Mode            string                 `json:"mode"`
	UserID          string                 `json:"userId,omitempty"`
	DraftText       string                 `json:"draftText"`
	RecentText      string                 `json:"recentText"`
	LastQuestion    string                 `json:"lastQuestion,omitempty"`
	QuestionHistory []questionHistoryItem  `json:"questionHistory,omitempty"`
	Profile         *questionProfile       `json:"profile,omitempty"`
	RecentSessions  []types.SessionSnippet `json:"recentSessions,omitempty"`
	PreferredKind   types.QuestionKind     `json:"preferredKind,omitempty"`
}

type questionHistoryItem struct {
	Text        string               `json:"text"`
	CoverageTag string               `json:"coverageTag,omitempty"`
	Kind        types.QuestionKind   `json:"kind,omitempty"`
	Status      types.QuestionStatus `json:"status,omitempty"`
}

type questionProfile struct {
	Tone        types.Tone        `json:"tone,omitempty"`
	Proactivity types.Proactivity `json:"proactivity,omitempty"`
	AvoidTopics []string          `json:"avoidTopics,omitempty"`
}

// questionResponse is the POST /questions reply.
type questionResponse struct {
	Answered         *bool             `json:"answered,omitempty"`
	AnswerConfidence *float64          `json:"answerConfidence,omitempty"`
	NextQuestion     *nextQuestionView `json:"nextQuestion,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	FallbackUsed     bool              `json:"fallbackUsed"`
}

// nextQuestionView is the wire form of a question. The API contract is
// camelCase; the domain type keeps its persisted snake_case tags.
type nextQuestionView struct {
	Text        string             `json:"text"`
	CoverageTag string             `json:"coverageTag,omitempty"`
	Kind        types.QuestionKind `json:"kind"`
}

// QuestionHandler serves validate and next-question requests.
type QuestionHandler struct {
	service *question.Service
	recall  SnippetRecaller
}

// NewQuestionHandler returns a QuestionHandler. recall may be nil.
func NewQuestionHandler(service *question.Service, recall SnippetRecaller) *QuestionHandler {
	return &QuestionHandler{service: service, recall: recall}
}

func (h *QuestionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Mode {
	case "validate":
		h.handleValidate(w, r, req)
	case "next":
		h.handleNext(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, "mode must be \"validate\" or \"next\"")
	}
}

func (h *QuestionHandler) handleValidate(w http.ResponseWriter, r *http.Request, req questionRequest) {
	if req.LastQuestion == "" {
		writeError(w, http.StatusBadRequest, "lastQuestion is required for validate")
		return
	}

	result := h.service.ValidateAnswer(r.Context(), req.LastQuestion, req.RecentText)
	writeJSON(w, http.StatusOK, questionResponse{
		Answered:         &result.Answered,
		AnswerConfidence: &result.Confidence,
		Reason:           result.Reason,
		FallbackUsed:     result.FallbackUsed,
	})
}

func (h *QuestionHandler) handleNext(w http.ResponseWriter, r *http.Request, req questionRequest) {
	params := question.NextParams{
		DraftText:      req.DraftText,
		RecentText:     req.RecentText,
		LastQuestion:   req.LastQuestion,
		History:        historyFromRequest(req.QuestionHistory),
		RecentSessions: req.RecentSessions,
		PreferredKind:  req.PreferredKind,
	}
	if req.Profile != nil {
		params.Profile = types.ProfileSettings{
			Tone:        req.Profile.Tone,
			Proactivity: req.Profile.Proactivity,
			AvoidTopics: req.Profile.AvoidTopics,
		}
	}

	if len(params.RecentSessions) == 0 && h.recall != nil && req.UserID != "" {
		snippets, err := h.recall.Recall(r.Context(), req.UserID, req.DraftText)
		if err != nil {
			slog.Warn("snippet recall failed", "error", err.Error(), "user_id", req.UserID)
		} else {
			params.RecentSessions = snippets
		}
	}

	result := h.service.NextQuestion(r.Context(), params)
	view := nextQuestionView{
		Text:        result.Question.Text,
		CoverageTag: result.Question.CoverageTag,
		Kind:        result.Question.Kind,
	}
	writeJSON(w, http.StatusOK, questionResponse{
		NextQuestion: &view,
		Reason:       result.Reason,
		FallbackUsed: result.FallbackUsed,
	})
}

func historyFromRequest(items []questionHistoryItem) types.QuestionHistory {
	if len(items) == 0 {
		return nil
	}
	history := make(types.QuestionHistory, 0, len(items))
	for _, item := range items {
		history = append(history, types.QuestionItem{
			Text:        item.Text,
			CoverageTag: item.CoverageTag,
			Kind:        item.Kind,
			Status:      item.Status,
		})
	}
	return history
}
