package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/inkdrift/inkdrift/internal/memory"
	"github.com/inkdrift/inkdrift/internal/types"
)

// sessionModel maps to the journal_sessions table.
type sessionModel struct {
	ID              string `gorm:"primaryKey"`
	UserID          string
	Title           string
	Transcript      string
	SummaryHeadline string
	SummaryBullets  json.RawMessage `gorm:"type:jsonb"`
	// Snippet is the retrievable excerpt built from the summary.
	Snippet string
	// Embedding stores the snippet vector for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (sessionModel) TableName() string {
	return "journal_sessions"
}

// SessionRepo accesses completed journal sessions.
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo returns a SessionRepo.
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// AddSession records one completed session.
func (r *SessionRepo) AddSession(ctx context.Context, sessionID, userID, title, transcript string, summary types.SessionSummary) error {
	bullets, err := marshalJSON(summary.Bullets)
	if err != nil {
		return fmt.Errorf("failed to encode summary bullets: %w", err)
	}

	record := sessionModel{
		ID:              sessionID,
		UserID:          userID,
		Title:           title,
		Transcript:      transcript,
		SummaryHeadline: summary.Headline,
		SummaryBullets:  bullets,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// AddSnippet attaches the retrievable snippet and embedding to a stored
// session, inserting the row when completion raced ahead of storage.
func (r *SessionRepo) AddSnippet(ctx context.Context, record memory.SessionRecord) error {
	var vector *pgvector.Vector
	if len(record.Embedding) > 0 {
		v := pgvector.NewVector(record.Embedding)
		vector = &v
	}

	result := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ?", record.SessionID).
		Updates(map[string]any{"snippet": record.Snippet, "embedding": vector})
	if result.Error != nil {
		return fmt.Errorf("failed to update session snippet: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	row := sessionModel{
		ID:        record.SessionID,
		UserID:    record.UserID,
		Title:     record.Title,
		Snippet:   record.Snippet,
		Embedding: vector,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session snippet: %w", err)
	}
	return nil
}

// SearchSimilar returns the most similar past-session snippets by cosine
// similarity, newest first among equals.
func (r *SessionRepo) SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int, threshold float64) ([]types.SessionSnippet, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	query := `
		SELECT title, snippet,
		       1 - (embedding <=> $1) AS similarity
		FROM journal_sessions
		WHERE embedding IS NOT NULL AND user_id = $2
		  AND 1 - (embedding <=> $1) > $3
		ORDER BY similarity DESC, created_at DESC
		LIMIT $4`

	var rows []struct {
		Title      string
		Snippet    string
		Similarity float64
	}
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), userID, threshold, topK).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar sessions: %w", err)
	}

	results := make([]types.SessionSnippet, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.SessionSnippet{Title: row.Title, Snippet: row.Snippet})
	}
	return results, nil
}
