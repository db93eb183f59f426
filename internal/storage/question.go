package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkdrift/inkdrift/internal/types"
)

// questionItemModel maps to the question_items table: the persisted
// question log of each session, append-only.
type questionItemModel struct {
	ID          string `gorm:"primaryKey"`
	SessionID   string `gorm:"index"`
	Text        string
	CoverageTag string
	Kind        string
	Status      string
	AskedAt     time.Time
	CreatedAt   time.Time
}

func (questionItemModel) TableName() string {
	return "question_items"
}

// QuestionRepo accesses persisted question history.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo returns a QuestionRepo.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// AppendItem records one shown question.
func (r *QuestionRepo) AppendItem(ctx context.Context, sessionID string, item types.QuestionItem) error {
	record := questionItemModel{
		ID:          item.ID,
		SessionID:   sessionID,
		Text:        item.Text,
		CoverageTag: item.CoverageTag,
		Kind:        string(item.Kind),
		Status:      string(item.Status),
		AskedAt:     item.AskedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert question item: %w", err)
	}
	return nil
}

// UpdateStatus mutates the status of one question item.
func (r *QuestionRepo) UpdateStatus(ctx context.Context, itemID string, status types.QuestionStatus) error {
	err := r.db.WithContext(ctx).Model(&questionItemModel{}).
		Where("id = ?", itemID).
		Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("failed to update question status: %w", err)
	}
	return nil
}

// ListBySession returns a session's question history in insertion order.
func (r *QuestionRepo) ListBySession(ctx context.Context, sessionID string) (types.QuestionHistory, error) {
	var records []questionItemModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("asked_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list question items: %w", err)
	}

	history := make(types.QuestionHistory, 0, len(records))
	for _, record := range records {
		history = append(history, types.QuestionItem{
			ID:          record.ID,
			Text:        record.Text,
			CoverageTag: record.CoverageTag,
			Kind:        types.QuestionKind(record.Kind),
			Status:      types.QuestionStatus(record.Status),
			AskedAt:     record.AskedAt,
		})
	}
	return history, nil
}
