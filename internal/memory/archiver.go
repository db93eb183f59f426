package memory

import (
	"context"
	"fmt"

	"github.com/inkdrift/inkdrift/internal/types"
)

// SessionStore persists completed sessions.
type SessionStore interface {
	AddSession(ctx context.Context, sessionID, userID, title, transcript string, summary types.SessionSummary) error
}

// Archiver records a completed session and indexes its snippet for recall.
type Archiver struct {
	sessions SessionStore
	recall   *Service
}

// NewArchiver returns an Archiver.
func NewArchiver(sessions SessionStore, recall *Service) *Archiver {
	return &Archiver{sessions: sessions, recall: recall}
}

// Archive stores the session row, then embeds and attaches its snippet.
func (a *Archiver) Archive(ctx context.Context, sessionID, userID, transcript string, summary types.SessionSummary) error {
	if err := a.sessions.AddSession(ctx, sessionID, userID, summary.Headline, transcript, summary); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if a.recall == nil {
		return nil
	}
	if err := a.recall.IndexSession(ctx, sessionID, userID, summary.Headline, summary); err != nil {
		return fmt.Errorf("failed to index session snippet: %w", err)
	}
	return nil
}
