package profile

import (
	"strings"
	"testing"
)

func TestSanitizePatchEnumCoercion(t *testing.T) {
	patch := SanitizePatch(RawPatch{Tone: " Direct ", Proactivity: "sometimes"})
	if patch.Tone == nil || *patch.Tone != "direct" {
		t.Fatalf("expected tone coerced to direct, got %#v", patch.Tone)
	}
	if patch.Proactivity != nil {
		t.Fatalf("expected invalid proactivity nulled, got %q", *patch.Proactivity)
	}
}

func TestSanitizePatchDisplayNameCollapsedAndCapped(t *testing.T) {
	patch := SanitizePatch(RawPatch{DisplayName: "  Sam   the\n Journaler  "})
	if patch.DisplayName == nil || *patch.DisplayName != "Sam the Journaler" {
		t.Fatalf("unexpected display name: %#v", patch.DisplayName)
	}

	long := SanitizePatch(RawPatch{DisplayName: strings.Repeat("n", 200)})
	if long.DisplayName == nil || len(*long.DisplayName) != 80 {
		t.Fatalf("expected display name capped at 80, got %d", len(*long.DisplayName))
	}
}

func TestSanitizePatchNotesCappedAt220(t *testing.T) {
	patch := SanitizePatch(RawPatch{NotesAppend: strings.Repeat("x", 400)})
	if patch.NotesAppend == nil {
		t.Fatal("expected notes to survive sanitation")
	}
	if len(*patch.NotesAppend) != 220 {
		t.Fatalf("expected exactly 220 chars, got %d", len(*patch.NotesAppend))
	}
}

func TestSanitizePatchEmptyTextBecomesNil(t *testing.T) {
	patch := SanitizePatch(RawPatch{DisplayName: "   ", NotesAppend: "\n\t"})
	if patch.DisplayName != nil || patch.NotesAppend != nil {
		t.Fatalf("expected nil fields, got %#v", patch)
	}
}

func TestSanitizePatchTopicNormalization(t *testing.T) {
	patch := SanitizePatch(RawPatch{
		AvoidTopicsAdd: []string{"Work", "  work ", "MY  Ex", "far too many words in here", ""},
	})
	if len(patch.AvoidTopicsAdd) != 2 {
		t.Fatalf("unexpected topics: %#v", patch.AvoidTopicsAdd)
	}
	if patch.AvoidTopicsAdd[0] != "work" || patch.AvoidTopicsAdd[1] != "my ex" {
		t.Fatalf("unexpected normalization: %#v", patch.AvoidTopicsAdd)
	}
}

func TestSanitizePatchEndToEndTopicMerge(t *testing.T) {
	patch := SanitizePatch(RawPatch{
		ShouldUpdate:      true,
		AvoidTopicsAdd:    []string{"work", "friends", "friends", "too many words here now"},
		AvoidTopicsRemove: []string{"health"},
	})

	merged, _ := MergeProfile(Profile{AvoidTopics: "work,health"}, patch, patch.ShouldUpdate)
	if merged.AvoidTopics != "work,friends" {
		t.Fatalf("unexpected merged topics: %q", merged.AvoidTopics)
	}
}
