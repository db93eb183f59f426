package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/inkdrift/inkdrift/internal/types"
)

const (
	patchExtractorAppName = "inkdrift_profile_memory"
	patchExtractorUserID  = "patch_extractor"
)

// patchInstruction asks for conservative, structured profile updates only.
const patchInstruction = `You infer small updates to a journaling user's long-lived profile from one
completed session.

Be conservative:
1. Only set should_update to true when the session contains a clear,
   durable signal about the user, not a passing mood.
2. display_name only when the user states what they want to be called.
3. tone is one of gentle, balanced, direct; proactivity is one of low,
   medium, high. Leave a field out when unsure.
4. avoid_topics_add / avoid_topics_remove are short topic phrases the user
   explicitly wants avoided or no longer avoided.
5. notes_append is at most one sentence capturing something worth
   remembering across sessions.

Return a valid JSON object matching the output schema and nothing else.`

// PatchExtractor obtains an untrusted profile patch for a completed session.
type PatchExtractor interface {
	ExtractPatch(ctx context.Context, transcript string, summary types.SessionSummary) (RawPatch, error)
}

// patchExtractor drives an ADK llmagent with a strict output schema.
type patchExtractor struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	counter        uint64
}

// NewPatchExtractor builds the patch extraction agent on a Gemini model.
func NewPatchExtractor(ctx context.Context, apiKey, modelName string) (PatchExtractor, error) {
	patchModel, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("failed to create patch model", "error", err)
		return nil, fmt.Errorf("failed to create patch model: %w", err)
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:            "patch_extractor",
		Description:     "profile memory patch extraction agent",
		Model:           patchModel,
		Instruction:     patchInstruction,
		OutputSchema:    patchOutputSchema(),
		IncludeContents: llmagent.IncludeContentsNone,
	})
	if err != nil {
		slog.Error("failed to create patch extractor agent", "error", err)
		return nil, fmt.Errorf("failed to create patch extractor agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        patchExtractorAppName,
		Agent:          llmAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create patch extractor runner: %w", err)
	}

	return &patchExtractor{
		agent:          llmAgent,
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// ExtractPatch runs the agent over the session transcript and summary and
// decodes its structured output. The result is untrusted and must go
// through SanitizePatch.
func (e *patchExtractor) ExtractPatch(ctx context.Context, transcript string, summary types.SessionSummary) (RawPatch, error) {
	extractSessID := fmt.Sprintf("patch-%d", atomic.AddUint64(&e.counter, 1))
	if _, err := e.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   patchExtractorAppName,
		UserID:    patchExtractorUserID,
		SessionID: extractSessID,
	}); err != nil {
		return RawPatch{}, fmt.Errorf("failed to create extractor session: %w", err)
	}

	msg := genai.NewContentFromText(buildPatchInput(transcript, summary), "user")
	events := e.runner.Run(ctx, patchExtractorUserID, extractSessID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return RawPatch{}, err
		}
		if event == nil || event.Content == nil {
			continue
		}
		if event.Author == "user" {
			continue
		}
		text := strings.TrimSpace(extractContentText(event.Content))
		if text == "" {
			continue
		}
		last = text
		if event.IsFinalResponse() {
			break
		}
	}
	if last == "" {
		return RawPatch{}, fmt.Errorf("empty patch response")
	}

	return parsePatchJSON(last)
}

// buildPatchInput joins the summary and transcript into one user message.
func buildPatchInput(transcript string, summary types.SessionSummary) string {
	var sb strings.Builder
	if summary.Headline != "" {
		sb.WriteString("Summary: ")
		sb.WriteString(summary.Headline)
		sb.WriteString("\n")
	}
	for _, bullet := range summary.Bullets {
		sb.WriteString("- ")
		sb.WriteString(bullet)
		sb.WriteString("\n")
	}
	if transcript != "" {
		sb.WriteString("\nTranscript:\n")
		sb.WriteString(transcript)
	}
	return sb.String()
}

func patchOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"should_update": {
				Type: genai.TypeBoolean,
			},
			"display_name": {
				Type: genai.TypeString,
			},
			"tone": {
				Type: genai.TypeString,
				Enum: []string{"gentle", "balanced", "direct"},
			},
			"proactivity": {
				Type: genai.TypeString,
				Enum: []string{"low", "medium", "high"},
			},
			"avoid_topics_add": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"avoid_topics_remove": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"notes_append": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"should_update"},
	}
}

// parsePatchJSON extracts the JSON object from model output and decodes it.
func parsePatchJSON(raw string) (RawPatch, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var patch RawPatch
	if err := json.Unmarshal([]byte(clean), &patch); err != nil {
		return RawPatch{}, fmt.Errorf("failed to parse patch json: %w", err)
	}
	return patch, nil
}

func extractContentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
