package question

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/inkdrift/inkdrift/internal/models"
	"github.com/inkdrift/inkdrift/internal/types"
)

type fakeChatModel struct {
	response string
	err      error
	lastReq  models.ChatRequest
}

func (m *fakeChatModel) Complete(_ context.Context, req models.ChatRequest) (string, error) {
	m.lastReq = req
	return m.response, m.err
}

func newTestService(model models.ChatModel) *Service {
	return NewService(model, NewFallbackPicker(rand.New(rand.NewSource(7))))
}

func TestValidateAnswerParsesModelOutput(t *testing.T) {
	model := &fakeChatModel{response: `{"answered": true, "confidence": 0.9, "reason": "direct reply"}`}
	service := newTestService(model)

	result := service.ValidateAnswer(context.Background(), "How was today?", "Today was calm and slow.")
	if !result.Answered || result.Confidence != 0.9 || result.FallbackUsed {
		t.Fatalf("unexpected result: %#v", result)
	}
	if result.Reason != "direct reply" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestValidateAnswerClampsConfidence(t *testing.T) {
	model := &fakeChatModel{response: `{"answered": true, "confidence": 3.5, "reason": "r"}`}
	result := newTestService(model).ValidateAnswer(context.Background(), "q?", "text.")
	if result.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", result.Confidence)
	}
}

func TestValidateAnswerFailsClosedOnCallError(t *testing.T) {
	model := &fakeChatModel{err: fmt.Errorf("connection refused")}
	result := newTestService(model).ValidateAnswer(context.Background(), "q?", "text.")
	if result.Answered || result.Confidence != 0 {
		t.Fatalf("expected fail-closed result, got %#v", result)
	}
	if result.Reason != ReasonOpenAIError || !result.FallbackUsed {
		t.Fatalf("expected openai_error fallback, got %#v", result)
	}
}

func TestValidateAnswerFailsClosedOnGarbage(t *testing.T) {
	model := &fakeChatModel{response: "sure, that looks answered to me"}
	result := newTestService(model).ValidateAnswer(context.Background(), "q?", "text.")
	if result.Answered || result.Reason != ReasonParseFailed || !result.FallbackUsed {
		t.Fatalf("expected parse_failed fallback, got %#v", result)
	}
}

func TestNextQuestionSanitizesGeneratedText(t *testing.T) {
	model := &fakeChatModel{response: "\"What helped you feel that way\"\nnote to self"}
	result := newTestService(model).NextQuestion(context.Background(), NextParams{
		RecentText:    "I felt lighter after the walk.",
		PreferredKind: types.KindFollowUp,
	})
	if result.FallbackUsed {
		t.Fatalf("expected generated question, got fallback: %#v", result)
	}
	if result.Question.Text != "What helped you feel that way?" {
		t.Fatalf("unexpected question text: %q", result.Question.Text)
	}
	if result.Question.Kind != types.KindFollowUp || result.Reason != ReasonGenerated {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestNextQuestionFallsBackOnCallError(t *testing.T) {
	model := &fakeChatModel{err: fmt.Errorf("timeout")}
	result := newTestService(model).NextQuestion(context.Background(), NextParams{})
	if !result.FallbackUsed || result.Reason != ReasonOpenAIError {
		t.Fatalf("expected openai_error fallback, got %#v", result)
	}
	if result.Question.Text == "" {
		t.Fatal("fallback must still produce a question")
	}
}

func TestNextQuestionFallsBackOnRejectedText(t *testing.T) {
	model := &fakeChatModel{response: "this rambling output has far too many words to ever pass the sanitizer checks here"}
	result := newTestService(model).NextQuestion(context.Background(), NextParams{})
	if !result.FallbackUsed || result.Reason != ReasonFallbackDefault {
		t.Fatalf("expected fallback_default, got %#v", result)
	}
}

func TestNextQuestionFallbackAvoidsTopics(t *testing.T) {
	model := &fakeChatModel{err: fmt.Errorf("down")}
	service := newTestService(model)
	for i := 0; i < 50; i++ {
		result := service.NextQuestion(context.Background(), NextParams{
			Profile: types.ProfileSettings{AvoidTopics: []string{"work"}},
		})
		if text := result.Question.Text; len(text) > 0 && touchesAvoidTopic(text, []string{"work"}) {
			t.Fatalf("fallback question touches avoid topic: %q", text)
		}
	}
}

func TestNextQuestionGeneratedTextTouchingTopicRejected(t *testing.T) {
	model := &fakeChatModel{response: "How is work treating you?"}
	result := newTestService(model).NextQuestion(context.Background(), NextParams{
		Profile: types.ProfileSettings{AvoidTopics: []string{"work"}},
	})
	if !result.FallbackUsed || result.Reason != ReasonFallbackDefault {
		t.Fatalf("expected fallback_default for avoid-topic hit, got %#v", result)
	}
}
