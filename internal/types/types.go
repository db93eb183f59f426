// Package types holds the shared domain types of the journaling service.
package types

import "time"

// QuestionKind is the intended role of a nudge question.
type QuestionKind string

const (
	// KindDefault is a generic question unconnected to prior answers.
	KindDefault QuestionKind = "default"
	// KindFollowUp builds on the most recent answer.
	KindFollowUp QuestionKind = "follow_up"
	// KindNewTopic deliberately shifts the subject.
	KindNewTopic QuestionKind = "new_topic"
)

// Valid reports whether k is one of the three closed kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindDefault, KindFollowUp, KindNewTopic:
		return true
	}
	return false
}

// QuestionStatus tracks the lifecycle of a shown question.
type QuestionStatus string

const (
	StatusShown    QuestionStatus = "shown"
	StatusAnswered QuestionStatus = "answered"
	StatusIgnored  QuestionStatus = "ignored"
)

// QuestionItem is one question shown during a session. Items are only ever
// appended to the history, never deleted; status mutates in place.
type QuestionItem struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	CoverageTag string         `json:"coverage_tag,omitempty"`
	Kind        QuestionKind   `json:"kind"`
	Status      QuestionStatus `json:"status"`
	AskedAt     time.Time      `json:"asked_at"`
}

// QuestionHistory is the insertion-ordered question log of one session.
type QuestionHistory []QuestionItem

// Last returns the most recent item, or false for an empty history.
func (h QuestionHistory) Last() (QuestionItem, bool) {
	if len(h) == 0 {
		return QuestionItem{}, false
	}
	return h[len(h)-1], true
}

// Tone controls how directly the assistant phrases questions.
type Tone string

const (
	ToneGentle   Tone = "gentle"
	ToneBalanced Tone = "balanced"
	ToneDirect   Tone = "direct"
)

// Proactivity controls how often the assistant interjects.
type Proactivity string

const (
	ProactivityLow    Proactivity = "low"
	ProactivityMedium Proactivity = "medium"
	ProactivityHigh   Proactivity = "high"
)

// ProfileSettings is the user-facing slice of the persisted profile that
// question generation consumes. AvoidTopics entries are normalized:
// lowercase, whitespace-collapsed, at most four words each.
type ProfileSettings struct {
	DisplayName string      `json:"display_name"`
	Tone        Tone        `json:"tone"`
	Proactivity Proactivity `json:"proactivity"`
	AvoidTopics []string    `json:"avoid_topics"`
}

// QuestionPayload is a question ready to be shown.
type QuestionPayload struct {
	Text        string       `json:"text"`
	CoverageTag string       `json:"coverage_tag,omitempty"`
	Kind        QuestionKind `json:"kind"`
}

// SessionSnippet is a short excerpt from a past session, retrieved for
// prompt context.
type SessionSnippet struct {
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
}

// SessionSummary is the completion summary handed to the profile merger.
type SessionSummary struct {
	Headline string   `json:"headline"`
	Bullets  []string `json:"bullets"`
}
