package question

import "github.com/inkdrift/inkdrift/internal/types"

// CompletionReason says why the previous question stopped being active.
type CompletionReason string

const (
	// ReasonAnswered means validation concluded the question was answered.
	ReasonAnswered CompletionReason = "answered"
	// ReasonRefresh means the user explicitly asked for a different question.
	ReasonRefresh CompletionReason = "refresh"
)

const maxFollowUpDepth = 2

// PreferredNextKind maps a completion reason onto the next question's kind.
// A refresh always jumps to a new topic. An answered question invites a
// follow-up unless the last two questions were already follow-ups, which
// caps follow-up depth and stops the conversation tunneling on one topic.
func PreferredNextKind(reason CompletionReason, history types.QuestionHistory) types.QuestionKind {
	switch reason {
	case ReasonRefresh:
		return types.KindNewTopic
	case ReasonAnswered:
		if trailingFollowUps(history) >= maxFollowUpDepth {
			return types.KindNewTopic
		}
		return types.KindFollowUp
	default:
		return InferPreferredKind(history)
	}
}

// InferPreferredKind derives the next kind from history alone, used when no
// question is currently active.
func InferPreferredKind(history types.QuestionHistory) types.QuestionKind {
	last, ok := history.Last()
	if !ok {
		return types.KindDefault
	}

	switch last.Status {
	case types.StatusAnswered:
		return types.KindFollowUp
	case types.StatusIgnored:
		return types.KindNewTopic
	case types.StatusShown:
		// fall through to the anti-repetition rule
	}

	if len(history) >= 2 && history[len(history)-1].Kind == history[len(history)-2].Kind {
		return types.KindNewTopic
	}
	return types.KindDefault
}

// trailingFollowUps counts consecutive follow_up items at the end of the
// history, including the question just answered.
func trailingFollowUps(history types.QuestionHistory) int {
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Kind != types.KindFollowUp {
			break
		}
		count++
	}
	return count
}
