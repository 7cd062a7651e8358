package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
)

var ErrInvalidQuietHours = errors.New("quiet hours need both start and end as HH:MM")

// SettingsService worker notification settings
type SettingsService interface {
	Get(ctx context.Context, workerID string) (*dto.NotificationSettingsResponse, error)
	Update(ctx context.Context, workerID string, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error)
}

type settingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(repo *repository.Repository, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, logger: logger}
}

func (s *settingsService) load(ctx context.Context, workerID string) (*model.WorkerNotificationSettings, bool, error) {
	settings, err := s.repo.Settings.Get(ctx, workerID)
	if err == nil {
		return settings, false, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultNotificationSettings(workerID), true, nil
	}
	s.logger.Error("query notification settings failed", zap.String("worker_id", workerID), zap.Error(err))
	return nil, false, err
}

func (s *settingsService) Get(ctx context.Context, workerID string) (*dto.NotificationSettingsResponse, error) {
	settings, isDefault, err := s.load(ctx, workerID)
	if err != nil {
		return nil, err
	}
	resp := toSettingsResponse(settings, isDefault)
	return &resp, nil
}

func (s *settingsService) Update(ctx context.Context, workerID string, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error) {
	settings, _, err := s.load(ctx, workerID)
	if err != nil {
		return nil, err
	}

	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&settings.PushEnabled, req.PushEnabled)
	setBool(&settings.SoundEnabled, req.SoundEnabled)
	setBool(&settings.VibrationEnabled, req.VibrationEnabled)
	setBool(&settings.NewUser, req.NewUser)
	setBool(&settings.UserRemoved, req.UserRemoved)
	setBool(&settings.ScheduleChange, req.ScheduleChange)
	setBool(&settings.AssignmentChange, req.AssignmentChange)
	setBool(&settings.RouteUpdate, req.RouteUpdate)
	setBool(&settings.HolidayUpdate, req.HolidayUpdate)
	setBool(&settings.SystemMessage, req.SystemMessage)
	setBool(&settings.Reminders, req.Reminders)

	if req.QuietHoursStart != nil {
		settings.QuietHoursStart = optionalClock(*req.QuietHoursStart)
	}
	if req.QuietHoursEnd != nil {
		settings.QuietHoursEnd = optionalClock(*req.QuietHoursEnd)
	}
	if err := validateQuietHours(settings.QuietHoursStart, settings.QuietHoursEnd); err != nil {
		return nil, err
	}
	settings.UpdatedBy = &workerID

	if err := s.repo.Settings.Upsert(ctx, settings); err != nil {
		s.logger.Error("save notification settings failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	resp := toSettingsResponse(settings, false)
	return &resp, nil
}

func optionalClock(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// validateQuietHours both bounds or neither, each "HH:MM".
func validateQuietHours(start, end *string) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return ErrInvalidQuietHours
	}
	if _, err := parseClock(*start); err != nil {
		return ErrInvalidQuietHours
	}
	if _, err := parseClock(*end); err != nil {
		return ErrInvalidQuietHours
	}
	return nil
}

func toSettingsResponse(st *model.WorkerNotificationSettings, isDefault bool) dto.NotificationSettingsResponse {
	resp := dto.NotificationSettingsResponse{
		WorkerID:         st.WorkerID,
		PushEnabled:      st.PushEnabled,
		SoundEnabled:     st.SoundEnabled,
		VibrationEnabled: st.VibrationEnabled,
		NewUser:          st.NewUser,
		UserRemoved:      st.UserRemoved,
		ScheduleChange:   st.ScheduleChange,
		AssignmentChange: st.AssignmentChange,
		RouteUpdate:      st.RouteUpdate,
		HolidayUpdate:    st.HolidayUpdate,
		SystemMessage:    st.SystemMessage,
		Reminders:        st.Reminders,
		IsDefault:        isDefault,
	}
	if st.QuietHoursStart != nil {
		resp.QuietHoursStart = *st.QuietHoursStart
	}
	if st.QuietHoursEnd != nil {
		resp.QuietHoursEnd = *st.QuietHoursEnd
	}
	return resp
}
