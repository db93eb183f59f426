// Package prompt assembles model instructions for the question service.
package prompt

import (
	"bytes"
	"fmt"

	"github.com/inkdrift/inkdrift/internal/types"
)

// NextQuestionContext contains all inputs for next-question assembly.
type NextQuestionContext struct {
	Tone           types.Tone
	PreferredKind  types.QuestionKind
	AvoidTopics    []string
	LastQuestion   string
	History        types.QuestionHistory
	RecentSessions []types.SessionSnippet
}

// BuildValidate renders the answer-validation instruction for a question.
func BuildValidate(questionText string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Question string }{Question: questionText}
	if err := validateTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build validate prompt: %w", err)
	}
	return buf.String(), nil
}

// BuildNextQuestion renders the next-question instruction.
func BuildNextQuestion(ctx NextQuestionContext) (string, error) {
	if ctx.Tone == "" {
		ctx.Tone = types.ToneBalanced
	}
	if ctx.PreferredKind == "" {
		ctx.PreferredKind = types.KindDefault
	}

	var buf bytes.Buffer
	if err := nextQuestionTemplate.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to build next-question prompt: %w", err)
	}
	return buf.String(), nil
}
