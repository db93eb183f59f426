package profile

import (
	"strings"

	"github.com/inkdrift/inkdrift/internal/types"
)

// RawPatch is the untrusted model output describing a profile update. It
// is never applied directly; every field goes through SanitizePatch first.
type RawPatch struct {
	ShouldUpdate      bool     `json:"should_update"`
	DisplayName       string   `json:"display_name"`
	Tone              string   `json:"tone"`
	Proactivity       string   `json:"proactivity"`
	AvoidTopicsAdd    []string `json:"avoid_topics_add"`
	AvoidTopicsRemove []string `json:"avoid_topics_remove"`
	NotesAppend       string   `json:"notes_append"`
}

// SanitizedPatch is the validated form of a model patch. Nil pointer
// fields mean "leave unchanged".
type SanitizedPatch struct {
	ShouldUpdate      bool
	DisplayName       *string
	Tone              *string
	Proactivity       *string
	AvoidTopicsAdd    []string
	AvoidTopicsRemove []string
	NotesAppend       *string
}

// SanitizePatch turns untrusted model output into a patch safe to merge.
// Enum fields are nulled unless exactly one allowed value; free-text fields
// are trimmed, whitespace-collapsed, and length-capped; topic lists are
// normalized entry by entry, dropping entries that fail rather than
// rejecting the patch wholesale.
func SanitizePatch(raw RawPatch) SanitizedPatch {
	patch := SanitizedPatch{
		ShouldUpdate:      raw.ShouldUpdate,
		Tone:              coerceEnum(raw.Tone, string(types.ToneGentle), string(types.ToneBalanced), string(types.ToneDirect)),
		Proactivity:       coerceEnum(raw.Proactivity, string(types.ProactivityLow), string(types.ProactivityMedium), string(types.ProactivityHigh)),
		AvoidTopicsAdd:    types.NormalizeTopicSet(raw.AvoidTopicsAdd),
		AvoidTopicsRemove: types.NormalizeTopicSet(raw.AvoidTopicsRemove),
		DisplayName:       sanitizeText(raw.DisplayName, maxDisplayNameLen),
		NotesAppend:       sanitizeText(raw.NotesAppend, maxNotesAppendLen),
	}
	return patch
}

// coerceEnum returns the value if it matches exactly one allowed value
// after trimming and lowercasing, nil otherwise.
func coerceEnum(raw string, allowed ...string) *string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if value == candidate {
			return &value
		}
	}
	return nil
}

// sanitizeText trims, collapses whitespace, and caps length in runes.
// Empty results become nil.
func sanitizeText(raw string, maxLen int) *string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return nil
	}
	runes := []rune(collapsed)
	if len(runes) > maxLen {
		collapsed = string(runes[:maxLen])
	}
	return &collapsed
}
