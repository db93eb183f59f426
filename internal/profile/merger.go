package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkdrift/inkdrift/internal/types"
)

// Merge reasons surfaced to the caller.
const (
	ReasonUpdated          = "updated"
	ReasonNoop             = "noop"
	ReasonDuplicateSession = "duplicate_session"
)

// MeDbRepo reads and writes the per-user personalization record.
type MeDbRepo interface {
	LoadMeDb(ctx context.Context, userID string) (Profile, State, error)
	SaveMeDb(ctx context.Context, userID string, profile Profile, state State) error
}

// MergeInput is one completed session handed to the merger.
type MergeInput struct {
	UserID     string
	SessionID  string
	Transcript string
	Summary    types.SessionSummary
}

// MergeOutcome is the well-formed result of a merge; every code path
// produces one.
type MergeOutcome struct {
	Applied   bool
	Reason    string
	Profile   Profile
	SessionID string
}

// Merger applies AI-inferred patches to the persisted profile, once per
// session. It has no internal locking: the idempotency guard is a value
// comparison on persisted state, and racing duplicate calls resolve as
// last-writer-wins.
type Merger struct {
	repo      MeDbRepo
	extractor PatchExtractor
	nowFunc   func() time.Time
}

// NewMerger returns a profile memory merger.
func NewMerger(repo MeDbRepo, extractor PatchExtractor) *Merger {
	return &Merger{repo: repo, extractor: extractor, nowFunc: time.Now}
}

// Merge runs the full pipeline: load, idempotency check, extract, sanitize,
// merge, persist. Extractor failure degrades to an empty patch; the merge
// still runs so the idempotency marker advances (no retries anywhere).
func (m *Merger) Merge(ctx context.Context, input MergeInput) (MergeOutcome, error) {
	current, state, err := m.repo.LoadMeDb(ctx, input.UserID)
	if err != nil {
		return MergeOutcome{}, fmt.Errorf("failed to load me db state: %w", err)
	}
	current = WithDefaults(current)

	if state.LastProfileMemorySessionID == input.SessionID {
		return MergeOutcome{
			Reason:    ReasonDuplicateSession,
			Profile:   current,
			SessionID: input.SessionID,
		}, nil
	}

	var raw RawPatch
	if m.extractor != nil {
		raw, err = m.extractor.ExtractPatch(ctx, input.Transcript, input.Summary)
		if err != nil {
			slog.Warn("patch extraction failed, merging empty patch",
				"error", err.Error(), "session_id", input.SessionID)
			raw = RawPatch{}
		}
	}
	patch := SanitizePatch(raw)

	merged, profileChanged := MergeProfile(current, patch, patch.ShouldUpdate)
	nextState, stateResult := ApplyStateUpdate(state, input.SessionID, patch.NotesAppend, patch.ShouldUpdate)

	reason := ReasonNoop
	if profileChanged || stateResult.NotesChanged {
		merged.SchemaVersion = schemaVersion
		merged.LastUpdatedBy = "ai"
		merged.LastUpdatedAt = m.nowFunc().UTC().Format(time.RFC3339)
		reason = ReasonUpdated
	}

	if err := m.repo.SaveMeDb(ctx, input.UserID, merged, nextState); err != nil {
		return MergeOutcome{}, fmt.Errorf("failed to persist me db state: %w", err)
	}

	return MergeOutcome{
		Applied:   reason == ReasonUpdated,
		Reason:    reason,
		Profile:   merged,
		SessionID: input.SessionID,
	}, nil
}

// Settings projects the persisted profile into the question-service view.
func (p Profile) Settings() types.ProfileSettings {
	return types.ProfileSettings{
		DisplayName: p.DisplayName,
		Tone:        types.Tone(p.Tone),
		Proactivity: types.Proactivity(p.Proactivity),
		AvoidTopics: types.ParseTopicList(p.AvoidTopics),
	}
}
