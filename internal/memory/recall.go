package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkdrift/inkdrift/internal/types"
)

// SessionRecord is a completed session to index for later recall.
type SessionRecord struct {
	SessionID string
	UserID    string
	Title     string
	Snippet   string
	Embedding []float32
}

// SnippetRepo persists session snippets and searches them by similarity.
type SnippetRepo interface {
	AddSnippet(ctx context.Context, record SessionRecord) error
	SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int, threshold float64) ([]types.SessionSnippet, error)
}

// Service indexes completed sessions and recalls related snippets for
// next-question prompts.
type Service struct {
	embedder            Embedder
	snippets            SnippetRepo
	topK                int
	similarityThreshold float64
}

// NewService returns a recall service.
func NewService(embedder Embedder, snippets SnippetRepo, topK int, threshold float64) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		embedder:            embedder,
		snippets:            snippets,
		topK:                topK,
		similarityThreshold: threshold,
	}
}

// IndexSession embeds a completed session's summary snippet and stores it.
func (s *Service) IndexSession(ctx context.Context, sessionID, userID, title string, summary types.SessionSummary) error {
	snippet := buildSnippetText(title, summary)
	if snippet == "" {
		return nil
	}

	embedding, err := s.embedder.EmbedDocument(ctx, snippet)
	if err != nil {
		return fmt.Errorf("failed to embed session snippet: %w", err)
	}

	return s.snippets.AddSnippet(ctx, SessionRecord{
		SessionID: sessionID,
		UserID:    userID,
		Title:     title,
		Snippet:   snippet,
		Embedding: embedding,
	})
}

// Recall returns the most similar past-session snippets for a query.
func (s *Service) Recall(ctx context.Context, userID, query string) ([]types.SessionSnippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed recall query: %w", err)
	}

	return s.snippets.SearchSimilar(ctx, userID, vec, s.topK, s.similarityThreshold)
}

// buildSnippetText joins the headline and bullets into one retrievable
// snippet.
func buildSnippetText(title string, summary types.SessionSummary) string {
	parts := make([]string, 0, len(summary.Bullets)+2)
	if title != "" {
		parts = append(parts, title)
	}
	if summary.Headline != "" {
		parts = append(parts, summary.Headline)
	}
	for _, bullet := range summary.Bullets {
		if strings.TrimSpace(bullet) != "" {
			parts = append(parts, bullet)
		}
	}
	return strings.Join(parts, " ; ")
}
