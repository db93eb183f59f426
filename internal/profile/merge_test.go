package profile

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestWithDefaults(t *testing.T) {
	p := WithDefaults(Profile{})
	if p.SchemaVersion != 1 || p.Tone != "balanced" || p.Proactivity != "medium" || p.LastUpdatedBy != "user" {
		t.Fatalf("unexpected defaults: %#v", p)
	}
}

func TestWithDefaultsPreservesExisting(t *testing.T) {
	p := WithDefaults(Profile{Tone: "direct", Proactivity: "high", LastUpdatedBy: "ai"})
	if p.Tone != "direct" || p.Proactivity != "high" || p.LastUpdatedBy != "ai" {
		t.Fatalf("defaults clobbered existing values: %#v", p)
	}
}

func TestMergeProfileNoUpdateIsIdentity(t *testing.T) {
	p := Profile{DisplayName: "Sam", Tone: "gentle", AvoidTopics: "work"}
	patch := SanitizedPatch{
		DisplayName:    strPtr("Alex"),
		Tone:           strPtr("direct"),
		AvoidTopicsAdd: []string{"health"},
	}

	merged, changed := MergeProfile(p, patch, false)
	if changed {
		t.Fatal("expected changed=false when shouldUpdate=false")
	}
	if merged != WithDefaults(p) {
		t.Fatalf("profile mutated despite shouldUpdate=false: %#v", merged)
	}
}

func TestMergeProfileReplacesOnlyDiffering(t *testing.T) {
	p := Profile{DisplayName: "Sam", Tone: "gentle", Proactivity: "low"}
	patch := SanitizedPatch{
		DisplayName: strPtr("Sam"),
		Tone:        strPtr("gentle"),
		Proactivity: strPtr("high"),
	}

	merged, changed := MergeProfile(p, patch, true)
	if !changed {
		t.Fatal("expected changed=true")
	}
	if merged.DisplayName != "Sam" || merged.Tone != "gentle" || merged.Proactivity != "high" {
		t.Fatalf("unexpected merge: %#v", merged)
	}
}

func TestMergeProfileAvoidTopicsRemoveThenAdd(t *testing.T) {
	p := Profile{AvoidTopics: "work,health"}
	patch := SanitizedPatch{
		AvoidTopicsAdd:    []string{"work", "friends"},
		AvoidTopicsRemove: []string{"health"},
	}

	merged, changed := MergeProfile(p, patch, true)
	if !changed {
		t.Fatal("expected changed=true")
	}
	if merged.AvoidTopics != "work,friends" {
		t.Fatalf("unexpected avoid topics: %q", merged.AvoidTopics)
	}
}

func TestMergeProfileAvoidTopicsNoChange(t *testing.T) {
	p := Profile{AvoidTopics: "work"}
	patch := SanitizedPatch{AvoidTopicsAdd: []string{"work"}}

	merged, changed := MergeProfile(p, patch, true)
	if changed || merged.AvoidTopics != "work" {
		t.Fatalf("expected no-op, got changed=%v topics=%q", changed, merged.AvoidTopics)
	}
}

func TestMergeProfileAvoidTopicsCap(t *testing.T) {
	add := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		add = append(add, "topic"+string(rune('a'+i)))
	}
	merged, _ := MergeProfile(Profile{}, SanitizedPatch{AvoidTopicsAdd: add}, true)
	if got := len(strings.Split(merged.AvoidTopics, ",")); got != 24 {
		t.Fatalf("expected 24 topics after cap, got %d", got)
	}
}

func TestApplyStateUpdateDuplicateSession(t *testing.T) {
	state := State{
		MemoryNotes:                []string{"keep"},
		LastProfileMemorySessionID: "sess-1",
	}

	next, result := ApplyStateUpdate(state, "sess-1", strPtr("new note"), true)
	if !result.Duplicate || result.Changed || result.NotesChanged {
		t.Fatalf("unexpected result: %#v", result)
	}
	if len(next.MemoryNotes) != 1 || next.MemoryNotes[0] != "keep" {
		t.Fatalf("memory notes modified on duplicate: %#v", next.MemoryNotes)
	}
}

func TestApplyStateUpdateAppendsNote(t *testing.T) {
	next, result := ApplyStateUpdate(State{}, "sess-2", strPtr("slept better this week"), true)
	if result.Duplicate || !result.Changed || !result.NotesChanged {
		t.Fatalf("unexpected result: %#v", result)
	}
	if len(next.MemoryNotes) != 1 || next.MemoryNotes[0] != "slept better this week" {
		t.Fatalf("unexpected notes: %#v", next.MemoryNotes)
	}
	if next.LastProfileMemorySessionID != "sess-2" {
		t.Fatalf("marker not advanced: %q", next.LastProfileMemorySessionID)
	}
}

func TestApplyStateUpdateAdvancesMarkerWithoutNote(t *testing.T) {
	next, result := ApplyStateUpdate(State{LastProfileMemorySessionID: "old"}, "new", nil, false)
	if result.NotesChanged || !result.Changed {
		t.Fatalf("unexpected result: %#v", result)
	}
	if next.LastProfileMemorySessionID != "new" {
		t.Fatal("marker must advance even for no-op sessions")
	}
}

func TestApplyStateUpdateCapsNotes(t *testing.T) {
	state := State{}
	for i := 0; i < 60; i++ {
		state.MemoryNotes = append(state.MemoryNotes, "note")
	}
	state.MemoryNotes[10] = "oldest-survivor"

	next, _ := ApplyStateUpdate(state, "sess-3", strPtr("latest"), true)
	if len(next.MemoryNotes) != 50 {
		t.Fatalf("expected 50 notes, got %d", len(next.MemoryNotes))
	}
	if next.MemoryNotes[49] != "latest" {
		t.Fatalf("newest note missing: %q", next.MemoryNotes[49])
	}
}
