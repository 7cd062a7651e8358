package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sad/backend/internal/model"
)

// SettingsRepository worker notification settings data access
type SettingsRepository interface {
	Get(ctx context.Context, workerID string) (*model.WorkerNotificationSettings, error)
	Upsert(ctx context.Context, s *model.WorkerNotificationSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo creates a SettingsRepository.
func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, workerID string) (*model.WorkerNotificationSettings, error) {
	var s model.WorkerNotificationSettings
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *model.WorkerNotificationSettings) error {
	// Select("*") writes false switches; otherwise the column default wins
	return r.db.WithContext(ctx).
		Select("*").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worker_id"}},
			DoUpdates: clause.AssignmentColumns(settingsColumns),
		}).
		Create(s).Error
}

var settingsColumns = []string{
	"push_enabled", "sound_enabled", "vibration_enabled",
	"quiet_hours_start", "quiet_hours_end",
	"new_user", "user_removed", "schedule_change", "assignment_change",
	"route_update", "holiday_update", "system_message", "reminders",
	"updated_at", "updated_by",
}
