package profile

import "github.com/inkdrift/inkdrift/internal/types"

// MergeProfile applies a sanitized patch onto the defaulted profile.
// Scalar fields replace the current value only when the patch value is
// non-nil and differs. Avoid topics are merged remove-then-add: an add of
// a topic requested for removal in the same patch wins.
func MergeProfile(p Profile, patch SanitizedPatch, shouldUpdate bool) (Profile, bool) {
	merged := WithDefaults(p)
	if !shouldUpdate {
		return merged, false
	}

	changed := false
	if patch.DisplayName != nil && *patch.DisplayName != merged.DisplayName {
		merged.DisplayName = *patch.DisplayName
		changed = true
	}
	if patch.Tone != nil && *patch.Tone != merged.Tone {
		merged.Tone = *patch.Tone
		changed = true
	}
	if patch.Proactivity != nil && *patch.Proactivity != merged.Proactivity {
		merged.Proactivity = *patch.Proactivity
		changed = true
	}

	if len(patch.AvoidTopicsAdd) > 0 || len(patch.AvoidTopicsRemove) > 0 {
		joined := mergeAvoidTopics(merged.AvoidTopics, patch.AvoidTopicsAdd, patch.AvoidTopicsRemove)
		if joined != merged.AvoidTopics {
			merged.AvoidTopics = joined
			changed = true
		}
	}

	return merged, changed
}

// mergeAvoidTopics removes requested topics, then adds requested ones,
// capping the set at the topic limit and re-serializing to the comma form.
func mergeAvoidTopics(current string, add, remove []string) string {
	topics := types.ParseTopicList(current)

	removeSet := make(map[string]struct{}, len(remove))
	for _, topic := range remove {
		removeSet[topic] = struct{}{}
	}

	kept := topics[:0]
	for _, topic := range topics {
		if _, drop := removeSet[topic]; !drop {
			kept = append(kept, topic)
		}
	}

	merged := types.NormalizeTopicSet(append(kept, add...))
	return types.JoinTopicList(merged)
}

// StateUpdateResult reports what ApplyStateUpdate did.
type StateUpdateResult struct {
	Duplicate    bool
	Changed      bool
	NotesChanged bool
}

// ApplyStateUpdate appends a memory note and advances the idempotency
// marker. A sessionID equal to the stored marker short-circuits: the same
// session's patch is never applied twice. The marker advances even when
// nothing else changed, so a no-op session is still recorded.
func ApplyStateUpdate(state State, sessionID string, notesAppend *string, shouldUpdate bool) (State, StateUpdateResult) {
	if state.LastProfileMemorySessionID == sessionID {
		return state, StateUpdateResult{Duplicate: true}
	}

	result := StateUpdateResult{Changed: true}
	if shouldUpdate && notesAppend != nil {
		state.MemoryNotes = append(state.MemoryNotes, *notesAppend)
		if len(state.MemoryNotes) > maxMemoryNotes {
			state.MemoryNotes = state.MemoryNotes[len(state.MemoryNotes)-maxMemoryNotes:]
		}
		result.NotesChanged = true
	}
	state.LastProfileMemorySessionID = sessionID
	return state, result
}
