package question

import (
	"strings"
	"testing"
)

func TestSanitizeTextQuotedMultiline(t *testing.T) {
	got, ok := SanitizeText("  \"What helped you feel that way\"\n extra line", nil)
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if got != "What helped you feel that way?" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestSanitizeTextAppendsQuestionMark(t *testing.T) {
	got, ok := SanitizeText("What made today good.", nil)
	if !ok || got != "What made today good?" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}
}

func TestSanitizeTextStripsListMarker(t *testing.T) {
	got, ok := SanitizeText("- What surprised you today?", nil)
	if !ok || got != "What surprised you today?" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}
}

func TestSanitizeTextRejectsEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\"\"", "...", "- \n rest"} {
		if got, ok := SanitizeText(input, nil); ok {
			t.Fatalf("expected rejection for %q, got %q", input, got)
		}
	}
}

func TestSanitizeTextRejectsTooManyWords(t *testing.T) {
	long := strings.Repeat("word ", 16) + "end?"
	if got, ok := SanitizeText(long, nil); ok {
		t.Fatalf("expected rejection for >15 words, got %q", got)
	}
}

func TestSanitizeTextAcceptsFifteenWords(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 14)) + " end?"
	if _, ok := SanitizeText(text, nil); !ok {
		t.Fatal("expected 15-word question to be accepted")
	}
}

func TestSanitizeTextRejectsAvoidTopic(t *testing.T) {
	if got, ok := SanitizeText("How is work going lately?", []string{"work"}); ok {
		t.Fatalf("expected avoid-topic rejection, got %q", got)
	}
	if got, ok := SanitizeText("How is WORK going lately?", []string{"work"}); ok {
		t.Fatalf("expected case-insensitive rejection, got %q", got)
	}
}

func TestSanitizeTextKeepsExistingQuestionMark(t *testing.T) {
	got, ok := SanitizeText("How are you feeling?", nil)
	if !ok || got != "How are you feeling?" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}
}
