// Package question implements nudge selection, sanitization, and the
// question service that talks to the model.
package question

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/inkdrift/inkdrift/internal/models"
	"github.com/inkdrift/inkdrift/internal/prompt"
	"github.com/inkdrift/inkdrift/internal/types"
)

// Machine-readable reasons attached to service results.
const (
	ReasonGenerated       = "generated"
	ReasonOpenAIError     = "openai_error"
	ReasonParseFailed     = "parse_failed"
	ReasonFallbackDefault = "fallback_default"
)

// ValidationResult is the outcome of checking whether recent transcript
// answers the active question.
type ValidationResult struct {
	Answered     bool    `json:"answered"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
	FallbackUsed bool    `json:"fallback_used"`
}

// NextParams carries everything next-question generation may use.
type NextParams struct {
	DraftText      string
	RecentText     string
	LastQuestion   string
	History        types.QuestionHistory
	Profile        types.ProfileSettings
	RecentSessions []types.SessionSnippet
	PreferredKind  types.QuestionKind
}

// NextResult is a question plus how it was produced.
type NextResult struct {
	Question     types.QuestionPayload `json:"question"`
	Reason       string                `json:"reason"`
	FallbackUsed bool                  `json:"fallback_used"`
}

// Service orchestrates one remote call per operation, with sanitization and
// a curated fallback so a question is always produced. It holds no session
// state and performs no retries.
type Service struct {
	model  models.ChatModel
	picker *FallbackPicker
}

// NewService returns a question service over the given chat model and
// fallback picker.
func NewService(model models.ChatModel, picker *FallbackPicker) *Service {
	return &Service{model: model, picker: picker}
}

// validationOutput is the untrusted model response for validation.
type validationOutput struct {
	Answered   bool    `json:"answered"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ValidateAnswer asks the model whether recentText answers the question.
// It fails closed: any upstream or parse failure yields answered=false with
// zero confidence, and the gate keeps evaluating future transcript.
func (s *Service) ValidateAnswer(ctx context.Context, questionText, recentText string) ValidationResult {
	instruction, err := prompt.BuildValidate(questionText)
	if err != nil {
		slog.Error("failed to build validate prompt", "error", err.Error())
		return ValidationResult{Reason: ReasonParseFailed, FallbackUsed: true}
	}

	raw, err := s.model.Complete(ctx, models.ChatRequest{
		Instruction:    instruction,
		Input:          recentText,
		ResponseSchema: validationSchema(),
		SchemaName:     "answer_validation",
	})
	if err != nil {
		slog.Warn("answer validation call failed", "error", err.Error())
		return ValidationResult{Reason: ReasonOpenAIError, FallbackUsed: true}
	}

	output, err := parseValidationJSON(raw)
	if err != nil {
		slog.Warn("answer validation returned unparsable output", "error", err.Error())
		return ValidationResult{Reason: ReasonParseFailed, FallbackUsed: true}
	}

	return ValidationResult{
		Answered:   output.Answered,
		Confidence: clampConfidence(output.Confidence),
		Reason:     output.Reason,
	}
}

// NextQuestion produces the next nudge. Model output is sanitized; on
// rejection or upstream failure the curated pool supplies the question.
func (s *Service) NextQuestion(ctx context.Context, params NextParams) NextResult {
	avoidTopics := types.NormalizeTopicSet(params.Profile.AvoidTopics)
	kind := params.PreferredKind
	if !kind.Valid() {
		kind = InferPreferredKind(params.History)
	}

	instruction, err := prompt.BuildNextQuestion(prompt.NextQuestionContext{
		Tone:           params.Profile.Tone,
		PreferredKind:  kind,
		AvoidTopics:    avoidTopics,
		LastQuestion:   params.LastQuestion,
		History:        params.History,
		RecentSessions: params.RecentSessions,
	})
	if err != nil {
		slog.Error("failed to build next-question prompt", "error", err.Error())
		return s.fallback(kind, avoidTopics, ReasonFallbackDefault)
	}

	input := strings.TrimSpace(params.RecentText)
	if input == "" {
		input = strings.TrimSpace(params.DraftText)
	}
	if input == "" {
		input = "(the user has not written anything yet)"
	}

	raw, err := s.model.Complete(ctx, models.ChatRequest{
		Instruction: instruction,
		Input:       input,
	})
	if err != nil {
		slog.Warn("next-question call failed", "error", err.Error())
		return s.fallback(kind, avoidTopics, ReasonOpenAIError)
	}
	if strings.TrimSpace(raw) == "" {
		return s.fallback(kind, avoidTopics, ReasonParseFailed)
	}

	text, ok := SanitizeText(raw, avoidTopics)
	if !ok {
		slog.Info("generated question rejected by sanitizer", "raw", raw)
		return s.fallback(kind, avoidTopics, ReasonFallbackDefault)
	}

	return NextResult{
		Question: types.QuestionPayload{Text: text, Kind: kind},
		Reason:   ReasonGenerated,
	}
}

func (s *Service) fallback(kind types.QuestionKind, avoidTopics []string, reason string) NextResult {
	payload := s.picker.Pick(avoidTopics)
	if kind.Valid() {
		payload.Kind = kind
	}
	return NextResult{Question: payload, Reason: reason, FallbackUsed: true}
}

// parseValidationJSON extracts the JSON object from model output and
// decodes it.
func parseValidationJSON(raw string) (validationOutput, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var output validationOutput
	if err := json.Unmarshal([]byte(clean), &output); err != nil {
		return validationOutput{}, fmt.Errorf("failed to parse validation json: %w", err)
	}
	return output, nil
}

func clampConfidence(confidence float64) float64 {
	if confidence != confidence || confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func validationSchema() *jsonschema.Schema {
	zero, one := 0.0, 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"answered":   {Type: "boolean"},
			"confidence": {Type: "number", Minimum: &zero, Maximum: &one},
			"reason":     {Type: "string"},
		},
		Required: []string{"answered", "confidence", "reason"},
	}
}
