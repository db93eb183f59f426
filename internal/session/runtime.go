// Package session drives one live journaling session: it feeds transcript
// and audio events through the trigger gate and runs at most one
// question-related remote call at a time.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkdrift/inkdrift/internal/question"
	"github.com/inkdrift/inkdrift/internal/trigger"
	"github.com/inkdrift/inkdrift/internal/types"
)

// TranscriptionProvider is the speech-to-text collaborator, consumed as a
// black box.
type TranscriptionProvider interface {
	Start(ctx context.Context) error
	Stop() error
	OnPartial(fn func(text string))
	OnFinal(fn func(text string))
}

// QuestionService is the slice of the question layer the runtime needs.
type QuestionService interface {
	ValidateAnswer(ctx context.Context, questionText, recentText string) question.ValidationResult
	NextQuestion(ctx context.Context, params question.NextParams) question.NextResult
}

// HistorySink persists question items as they are shown and resolved.
// A nil sink keeps history in memory only.
type HistorySink interface {
	AppendItem(ctx context.Context, sessionID string, item types.QuestionItem) error
	UpdateStatus(ctx context.Context, itemID string, status types.QuestionStatus) error
}

// Config wires one runtime.
type Config struct {
	SessionID      string
	UserID         string
	Profile        types.ProfileSettings
	RecentSessions []types.SessionSnippet
	Questions      QuestionService
	Sink           HistorySink
	// OnQuestion is called when a nudge should be shown.
	OnQuestion func(types.QuestionItem)
	// NowFunc is injectable for tests; defaults to time.Now.
	NowFunc func() time.Time
}

// Runtime owns the per-session trigger gate and question history. Event
// methods must be called sequentially; remote calls run asynchronously but
// never more than one at a time, and results arriving after completion are
// discarded.
type Runtime struct {
	mu sync.Mutex

	sessionID string
	userID    string
	profile   types.ProfileSettings
	recent    []types.SessionSnippet

	gate      *trigger.Gate
	questions QuestionService
	sink      HistorySink
	show      func(types.QuestionItem)
	nowFunc   func() time.Time

	history   types.QuestionHistory
	activeIdx int
	completed bool
	draft     string

	// pendingReason records why the previous question stopped being active,
	// steering the kind of the next one.
	pendingReason *question.CompletionReason
}

// NewRuntime starts the session clock and returns a runtime.
func NewRuntime(cfg Config) *Runtime {
	nowFunc := cfg.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Runtime{
		sessionID: cfg.SessionID,
		userID:    cfg.UserID,
		profile:   cfg.Profile,
		recent:    cfg.RecentSessions,
		gate:      trigger.NewGate(cfg.Profile.Proactivity, nowFunc()),
		questions: cfg.Questions,
		sink:      cfg.Sink,
		show:      cfg.OnQuestion,
		nowFunc:   nowFunc,
		activeIdx: -1,
	}
}

// Attach subscribes the runtime to a transcription provider.
func (r *Runtime) Attach(ctx context.Context, provider TranscriptionProvider) error {
	provider.OnPartial(func(text string) { r.OnPartialLine(ctx, text) })
	provider.OnFinal(func(text string) { r.OnCommittedLine(ctx, text) })
	return provider.Start(ctx)
}

// OnAudioLevel consumes one audio-level sample.
func (r *Runtime) OnAudioLevel(ctx context.Context, level float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatch(ctx, r.gate.OnAudioLevel(level, r.nowFunc()))
}

// OnPartialLine records the in-progress line as the current draft.
func (r *Runtime) OnPartialLine(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft = text
}

// OnCommittedLine consumes a finalized transcript line.
func (r *Runtime) OnCommittedLine(ctx context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft = ""
	r.dispatch(ctx, r.gate.OnCommittedLine(text, r.nowFunc()))
}

// RefreshQuestion handles the explicit "show me something else" action:
// the active question is marked ignored and a new-topic question is
// requested immediately, bypassing the trigger heuristics.
func (r *Runtime) RefreshQuestion(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed || r.gate.State() == trigger.StateAwaitingDecision {
		return
	}

	r.resolveActive(ctx, types.StatusIgnored)
	reason := question.ReasonRefresh
	r.pendingReason = &reason
	r.dispatch(ctx, &trigger.Action{Type: trigger.ActionRequestNextQuestion, RecentText: r.draft})
}

// Complete moves the session to its terminal state and returns the final
// question history. Any in-flight call's result will be discarded.
func (r *Runtime) Complete() types.QuestionHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = true
	r.gate.Complete()
	history := make(types.QuestionHistory, len(r.history))
	copy(history, r.history)
	return history
}

// History returns a copy of the question history so far.
func (r *Runtime) History() types.QuestionHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make(types.QuestionHistory, len(r.history))
	copy(history, r.history)
	return history
}

// dispatch launches the remote call for a fired action. Caller holds the
// lock.
func (r *Runtime) dispatch(ctx context.Context, action *trigger.Action) {
	if action == nil || r.completed {
		return
	}
	r.gate.BeginDecision()

	switch action.Type {
	case trigger.ActionValidateAnswer:
		questionText := ""
		if r.activeIdx >= 0 {
			questionText = r.history[r.activeIdx].Text
		}
		go r.runValidate(ctx, questionText, action.RecentText)
	case trigger.ActionRequestNextQuestion:
		params := r.buildNextParams(action.RecentText)
		go r.runNext(ctx, params)
	}
}

// buildNextParams snapshots session state for the remote call. Caller
// holds the lock.
func (r *Runtime) buildNextParams(recentText string) question.NextParams {
	history := make(types.QuestionHistory, len(r.history))
	copy(history, r.history)

	kind := question.InferPreferredKind(history)
	if r.pendingReason != nil {
		kind = question.PreferredNextKind(*r.pendingReason, history)
	}

	lastQuestion := ""
	if last, ok := history.Last(); ok {
		lastQuestion = last.Text
	}

	return question.NextParams{
		DraftText:      r.draft,
		RecentText:     recentText,
		LastQuestion:   lastQuestion,
		History:        history,
		Profile:        r.profile,
		RecentSessions: r.recent,
		PreferredKind:  kind,
	}
}

func (r *Runtime) runValidate(ctx context.Context, questionText, recentText string) {
	result := r.questions.ValidateAnswer(ctx, questionText, recentText)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		// Session ended while the call was in flight.
		return
	}
	r.gate.EndDecision()

	if result.Answered {
		r.resolveActive(ctx, types.StatusAnswered)
		reason := question.ReasonAnswered
		r.pendingReason = &reason
	}
}

func (r *Runtime) runNext(ctx context.Context, params question.NextParams) {
	result := r.questions.NextQuestion(ctx, params)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		return
	}

	item := types.QuestionItem{
		ID:          uuid.NewString(),
		Text:        result.Question.Text,
		CoverageTag: result.Question.CoverageTag,
		Kind:        result.Question.Kind,
		Status:      types.StatusShown,
		AskedAt:     r.nowFunc(),
	}
	r.history = append(r.history, item)
	r.activeIdx = len(r.history) - 1
	r.pendingReason = nil
	r.gate.QuestionShown(item.AskedAt)

	if r.sink != nil {
		if err := r.sink.AppendItem(ctx, r.sessionID, item); err != nil {
			slog.Warn("failed to persist question item", "error", err.Error(), "session_id", r.sessionID)
		}
	}
	if r.show != nil {
		r.show(item)
	}
}

// resolveActive finalizes the active question's status. Caller holds the
// lock.
func (r *Runtime) resolveActive(ctx context.Context, status types.QuestionStatus) {
	if r.activeIdx < 0 {
		return
	}
	r.history[r.activeIdx].Status = status
	if r.sink != nil {
		if err := r.sink.UpdateStatus(ctx, r.history[r.activeIdx].ID, status); err != nil {
			slog.Warn("failed to persist question status", "error", err.Error(), "session_id", r.sessionID)
		}
	}
	r.activeIdx = -1
	r.gate.QuestionResolved()
}
