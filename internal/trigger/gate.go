// Package trigger decides when the assistant may interject during a live
// journaling session.
package trigger

import (
	"strings"
	"time"

	"github.com/inkdrift/inkdrift/internal/types"
)

// State is the gate's position in the nudge loop.
type State string

const (
	// StateIdle means the gate is watching the transcript.
	StateIdle State = "idle"
	// StateAwaitingDecision means a remote call is in flight.
	StateAwaitingDecision State = "awaiting_decision"
	// StateQuestionDisplayed means a nudge is on screen.
	StateQuestionDisplayed State = "question_displayed"
	// StateCompleted is absorbing; no trigger ever fires again.
	StateCompleted State = "completed"
)

// ActionType discriminates gate outputs.
type ActionType string

const (
	// ActionValidateAnswer asks whether recent text answers the active question.
	ActionValidateAnswer ActionType = "validate_answer"
	// ActionRequestNextQuestion asks for a fresh nudge.
	ActionRequestNextQuestion ActionType = "request_next_question"
)

// Action is a gate decision. RecentText carries the transcript the remote
// call should look at.
type Action struct {
	Type       ActionType
	RecentText string
}

const (
	// minStartDelay keeps the assistant quiet at the top of a session.
	minStartDelay = 10 * time.Second
	// silenceThreshold is how long the audio level must stay below the
	// voice-activity threshold before the silence trigger fires.
	silenceThreshold = 4500 * time.Millisecond
	// voiceActivityThreshold separates speech from room noise on the
	// normalized [0,1] level signal.
	voiceActivityThreshold = 0.06

	minBoundaryWords = 4
)

// IntervalFor maps the proactivity level onto the minimum spacing between
// questions.
func IntervalFor(p types.Proactivity) time.Duration {
	switch p {
	case types.ProactivityLow:
		return 60 * time.Second
	case types.ProactivityHigh:
		return 20 * time.Second
	default:
		return 30 * time.Second
	}
}

// Gate watches transcript and audio-level events for one session and
// decides when to validate an answer or request the next question. It is
// driven sequentially: each event is processed to completion before the
// next arrives, so no internal locking is needed.
type Gate struct {
	interval         time.Duration
	sessionStartedAt time.Time
	lastQuestionAt   time.Time

	generating bool
	displayed  bool
	completed  bool

	// seenBoundaries dedupes the sentence-boundary trigger: an unchanged
	// trailing sentence fires at most once per session. Keyed on the exact
	// trimmed sentence.
	seenBoundaries map[string]struct{}

	silenceSince time.Time

	lastCommitted      string
	committedSinceShow []string
}

// NewGate returns a gate for a session that started at startedAt with the
// given proactivity level.
func NewGate(proactivity types.Proactivity, startedAt time.Time) *Gate {
	return &Gate{
		interval:         IntervalFor(proactivity),
		sessionStartedAt: startedAt,
		seenBoundaries:   make(map[string]struct{}),
	}
}

// State derives the loop state from the gate flags.
func (g *Gate) State() State {
	switch {
	case g.completed:
		return StateCompleted
	case g.generating:
		return StateAwaitingDecision
	case g.displayed:
		return StateQuestionDisplayed
	default:
		return StateIdle
	}
}

// OnAudioLevel consumes one audio-level sample. It may fire the silence
// trigger.
func (g *Gate) OnAudioLevel(level float64, now time.Time) *Action {
	if g.completed {
		return nil
	}

	if level >= voiceActivityThreshold {
		g.silenceSince = time.Time{}
		return nil
	}
	if g.silenceSince.IsZero() {
		g.silenceSince = now
		return nil
	}
	if now.Sub(g.silenceSince) < silenceThreshold {
		return nil
	}

	// Re-arm so a continuing silence does not refire every sample.
	g.silenceSince = now
	return g.decide(now)
}

// OnCommittedLine consumes a finalized transcript line. It may fire the
// sentence-boundary trigger.
func (g *Gate) OnCommittedLine(line string, now time.Time) *Action {
	if g.completed {
		return nil
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	g.lastCommitted = trimmed
	if g.displayed {
		g.committedSinceShow = append(g.committedSinceShow, trimmed)
	}

	if !endsAtSentenceBoundary(trimmed) || len(strings.Fields(trimmed)) < minBoundaryWords {
		return nil
	}
	if _, seen := g.seenBoundaries[trimmed]; seen {
		return nil
	}
	g.seenBoundaries[trimmed] = struct{}{}

	return g.decide(now)
}

// decide applies the guards and picks an action. Validation fires only
// while a question is displayed and only when newly transcribed text ends
// at a sentence boundary; question requests additionally honor the
// per-proactivity minimum interval.
func (g *Gate) decide(now time.Time) *Action {
	if g.completed || g.generating {
		return nil
	}
	if now.Sub(g.sessionStartedAt) < minStartDelay {
		return nil
	}

	if g.displayed {
		recent := strings.Join(g.committedSinceShow, " ")
		if recent == "" || !endsAtSentenceBoundary(recent) {
			return nil
		}
		return &Action{Type: ActionValidateAnswer, RecentText: recent}
	}

	if !g.lastQuestionAt.IsZero() && now.Sub(g.lastQuestionAt) < g.interval {
		return nil
	}
	return &Action{Type: ActionRequestNextQuestion, RecentText: g.lastCommitted}
}

// BeginDecision marks a remote call in flight. Further triggers are
// suppressed, not queued, until the call settles.
func (g *Gate) BeginDecision() {
	if g.completed {
		return
	}
	g.generating = true
}

// EndDecision clears the in-flight flag without changing what is shown.
func (g *Gate) EndDecision() {
	g.generating = false
}

// QuestionShown records that a nudge is now displayed.
func (g *Gate) QuestionShown(now time.Time) {
	if g.completed {
		return
	}
	g.generating = false
	g.displayed = true
	g.lastQuestionAt = now
	g.committedSinceShow = nil
}

// QuestionResolved clears the displayed question (answered or ignored).
func (g *Gate) QuestionResolved() {
	if g.completed {
		return
	}
	g.displayed = false
	g.committedSinceShow = nil
}

// Complete moves the gate to its absorbing terminal state.
func (g *Gate) Complete() {
	g.completed = true
}

func endsAtSentenceBoundary(text string) bool {
	return strings.HasSuffix(text, ".") || strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!")
}
