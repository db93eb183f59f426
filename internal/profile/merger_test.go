package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inkdrift/inkdrift/internal/types"
)

type fakeMeDbRepo struct {
	profile Profile
	state   State
	saved   bool
	loadErr error
	saveErr error
}

func (r *fakeMeDbRepo) LoadMeDb(ctx context.Context, userID string) (Profile, State, error) {
	return r.profile, r.state, r.loadErr
}

func (r *fakeMeDbRepo) SaveMeDb(ctx context.Context, userID string, prof Profile, state State) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.profile = prof
	r.state = state
	r.saved = true
	return nil
}

type fakeExtractor struct {
	patch RawPatch
	err   error
	calls int
}

func (e *fakeExtractor) ExtractPatch(ctx context.Context, transcript string, summary types.SessionSummary) (RawPatch, error) {
	e.calls++
	return e.patch, e.err
}

func newTestMerger(repo *fakeMeDbRepo, extractor PatchExtractor) *Merger {
	m := NewMerger(repo, extractor)
	m.nowFunc = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return m
}

func TestMergerAppliesPatch(t *testing.T) {
	repo := &fakeMeDbRepo{profile: Profile{AvoidTopics: "work,health"}}
	extractor := &fakeExtractor{patch: RawPatch{
		ShouldUpdate:      true,
		Tone:              "direct",
		AvoidTopicsAdd:    []string{"friends"},
		AvoidTopicsRemove: []string{"health"},
		NotesAppend:       "prefers evening sessions",
	}}
	merger := newTestMerger(repo, extractor)

	outcome, err := merger.Merge(context.Background(), MergeInput{UserID: "u1", SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !outcome.Applied || outcome.Reason != ReasonUpdated {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if outcome.Profile.Tone != "direct" || outcome.Profile.AvoidTopics != "work,friends" {
		t.Fatalf("unexpected profile: %#v", outcome.Profile)
	}
	if outcome.Profile.LastUpdatedBy != "ai" || outcome.Profile.LastUpdatedAt == "" {
		t.Fatalf("expected ai stamp, got %#v", outcome.Profile)
	}
	if repo.state.LastProfileMemorySessionID != "sess-1" {
		t.Fatalf("marker not persisted: %q", repo.state.LastProfileMemorySessionID)
	}
	if len(repo.state.MemoryNotes) != 1 || repo.state.MemoryNotes[0] != "prefers evening sessions" {
		t.Fatalf("unexpected notes: %#v", repo.state.MemoryNotes)
	}
}

func TestMergerDuplicateSessionShortCircuits(t *testing.T) {
	repo := &fakeMeDbRepo{
		profile: Profile{DisplayName: "Sam"},
		state:   State{LastProfileMemorySessionID: "sess-1"},
	}
	extractor := &fakeExtractor{patch: RawPatch{ShouldUpdate: true, DisplayName: "Changed"}}
	merger := newTestMerger(repo, extractor)

	outcome, err := merger.Merge(context.Background(), MergeInput{UserID: "u1", SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Applied || outcome.Reason != ReasonDuplicateSession {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if extractor.calls != 0 {
		t.Fatal("extractor must not run for duplicate sessions")
	}
	if repo.saved {
		t.Fatal("duplicate session must not write")
	}
	if outcome.Profile.DisplayName != "Sam" {
		t.Fatalf("expected existing profile returned, got %#v", outcome.Profile)
	}
}

func TestMergerNoopStillAdvancesMarker(t *testing.T) {
	repo := &fakeMeDbRepo{state: State{LastProfileMemorySessionID: "old"}}
	extractor := &fakeExtractor{patch: RawPatch{ShouldUpdate: false, DisplayName: "Ignored"}}
	merger := newTestMerger(repo, extractor)

	outcome, err := merger.Merge(context.Background(), MergeInput{UserID: "u1", SessionID: "sess-2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Applied || outcome.Reason != ReasonNoop {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if repo.state.LastProfileMemorySessionID != "sess-2" {
		t.Fatal("noop merge must still advance the idempotency marker")
	}
	if outcome.Profile.LastUpdatedBy != "user" {
		t.Fatalf("noop must not stamp ai, got %#v", outcome.Profile)
	}
}

func TestMergerExtractorFailureDegradesToNoop(t *testing.T) {
	repo := &fakeMeDbRepo{}
	extractor := &fakeExtractor{err: fmt.Errorf("model unavailable")}
	merger := newTestMerger(repo, extractor)

	outcome, err := merger.Merge(context.Background(), MergeInput{UserID: "u1", SessionID: "sess-3"})
	if err != nil {
		t.Fatalf("extraction failure must not surface, got %v", err)
	}
	if outcome.Applied || outcome.Reason != ReasonNoop {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if repo.state.LastProfileMemorySessionID != "sess-3" {
		t.Fatal("marker must advance even when extraction fails")
	}
}

func TestMergerLoadFailureSurfaces(t *testing.T) {
	repo := &fakeMeDbRepo{loadErr: fmt.Errorf("db down")}
	merger := newTestMerger(repo, &fakeExtractor{})

	if _, err := merger.Merge(context.Background(), MergeInput{UserID: "u1", SessionID: "s"}); err == nil {
		t.Fatal("expected load error to surface")
	}
}
