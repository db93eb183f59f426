package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkdrift/inkdrift/internal/profile"
)

// meDbModel maps to the me_db table: one personalization record per user,
// profile and state kept as JSONB blobs.
type meDbModel struct {
	UserID      string          `gorm:"primaryKey;column:user_id"`
	ProfileJSON json.RawMessage `gorm:"type:jsonb;column:profile_json"`
	StateJSON   json.RawMessage `gorm:"type:jsonb;column:state_json"`
	UpdatedAt   time.Time
}

func (meDbModel) TableName() string {
	return "me_db"
}

// MeDbRepo accesses the per-user personalization record.
type MeDbRepo struct {
	db *gorm.DB
}

// NewMeDbRepo returns a MeDbRepo.
func NewMeDbRepo(db *gorm.DB) *MeDbRepo {
	return &MeDbRepo{db: db}
}

// LoadMeDb reads the profile and state blobs. A missing row yields zero
// values; the merger applies defaults.
func (r *MeDbRepo) LoadMeDb(ctx context.Context, userID string) (profile.Profile, profile.State, error) {
	var model meDbModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.Profile{}, profile.State{}, nil
	}
	if err != nil {
		return profile.Profile{}, profile.State{}, fmt.Errorf("failed to load me db record: %w", err)
	}

	var prof profile.Profile
	var state profile.State
	if err := unmarshalJSON(model.ProfileJSON, &prof); err != nil {
		return profile.Profile{}, profile.State{}, fmt.Errorf("failed to decode profile json: %w", err)
	}
	if err := unmarshalJSON(model.StateJSON, &state); err != nil {
		return profile.Profile{}, profile.State{}, fmt.Errorf("failed to decode state json: %w", err)
	}
	return prof, state, nil
}

// SaveMeDb writes both blobs back, creating the row on first save.
func (r *MeDbRepo) SaveMeDb(ctx context.Context, userID string, prof profile.Profile, state profile.State) error {
	profileJSON, err := marshalJSON(prof)
	if err != nil {
		return fmt.Errorf("failed to encode profile json: %w", err)
	}
	stateJSON, err := marshalJSON(state)
	if err != nil {
		return fmt.Errorf("failed to encode state json: %w", err)
	}

	record := meDbModel{
		UserID:      userID,
		ProfileJSON: profileJSON,
		StateJSON:   stateJSON,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save me db record: %w", err)
	}
	return nil
}
