package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
)

var ErrDeviceNotFound = errors.New("device not found")

// DeviceService push device registration
type DeviceService interface {
	// Register upserts by push token; a token seen before moves to workerID
	// and is reactivated.
	Register(ctx context.Context, workerID string, req *dto.RegisterDeviceRequest) (*dto.DeviceResponse, error)
	List(ctx context.Context, workerID string) ([]dto.DeviceResponse, error)
	Deactivate(ctx context.Context, id, workerID string) error
}

type deviceService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewDeviceService creates a DeviceService.
func NewDeviceService(repo *repository.Repository, now func() time.Time, logger *zap.Logger) DeviceService {
	if now == nil {
		now = time.Now
	}
	return &deviceService{repo: repo, now: now, logger: logger}
}

func (s *deviceService) Register(ctx context.Context, workerID string, req *dto.RegisterDeviceRequest) (*dto.DeviceResponse, error) {
	token := strings.TrimSpace(req.PushToken)
	now := s.now()

	device, err := s.repo.Device.GetByToken(ctx, token)
	switch {
	case err == nil:
		if device.WorkerID != workerID {
			s.logger.Info("push token moved to another worker",
				zap.String("from_worker", device.WorkerID),
				zap.String("to_worker", workerID))
		}
		device.WorkerID = workerID
		device.Platform = req.Platform
		device.DeviceName = req.DeviceName
		device.AppVersion = req.AppVersion
		device.IsActive = true
		device.LastSeenAt = now
		device.UpdatedBy = &workerID
		if err := s.repo.Device.Update(ctx, device); err != nil {
			s.logger.Error("update device failed", zap.String("id", device.DeviceID), zap.Error(err))
			return nil, err
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		device = &model.WorkerDevice{
			WorkerID:   workerID,
			PushToken:  token,
			Platform:   req.Platform,
			DeviceName: req.DeviceName,
			AppVersion: req.AppVersion,
			IsActive:   true,
			LastSeenAt: now,
		}
		device.CreatedBy = &workerID
		device.UpdatedBy = &workerID
		if err := s.repo.Device.Create(ctx, device); err != nil {
			s.logger.Error("create device failed", zap.String("worker_id", workerID), zap.Error(err))
			return nil, err
		}

	default:
		s.logger.Error("query device failed", zap.Error(err))
		return nil, err
	}

	resp := toDeviceResponse(device)
	return &resp, nil
}

func (s *deviceService) List(ctx context.Context, workerID string) ([]dto.DeviceResponse, error) {
	devices, err := s.repo.Device.ListByWorker(ctx, workerID, false)
	if err != nil {
		s.logger.Error("list devices failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DeviceResponse, 0, len(devices))
	for i := range devices {
		result = append(result, toDeviceResponse(&devices[i]))
	}
	return result, nil
}

func (s *deviceService) Deactivate(ctx context.Context, id, workerID string) error {
	device, err := s.repo.Device.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		s.logger.Error("query device failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if device.WorkerID != workerID {
		return ErrDeviceNotFound
	}
	if err := s.repo.Device.Deactivate(ctx, id); err != nil {
		s.logger.Error("deactivate device failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toDeviceResponse(d *model.WorkerDevice) dto.DeviceResponse {
	return dto.DeviceResponse{
		ID:         d.DeviceID,
		Platform:   d.Platform,
		DeviceName: d.DeviceName,
		AppVersion: d.AppVersion,
		IsActive:   d.IsActive,
		LastSeenAt: formatTimestamp(d.LastSeenAt),
		CreatedAt:  formatTimestamp(d.CreatedAt),
	}
}
