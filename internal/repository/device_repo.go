package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// DeviceRepository worker device data access
type DeviceRepository interface {
	Create(ctx context.Context, d *model.WorkerDevice) error
	GetByID(ctx context.Context, id string) (*model.WorkerDevice, error)
	GetByToken(ctx context.Context, token string) (*model.WorkerDevice, error)
	ListByWorker(ctx context.Context, workerID string, activeOnly bool) ([]model.WorkerDevice, error)
	Update(ctx context.Context, d *model.WorkerDevice) error
	Deactivate(ctx context.Context, id string) error
	DeactivateByToken(ctx context.Context, token string) error
}

type deviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo creates a DeviceRepository.
func NewDeviceRepo(db *gorm.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) Create(ctx context.Context, d *model.WorkerDevice) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deviceRepo) GetByID(ctx context.Context, id string) (*model.WorkerDevice, error) {
	var d model.WorkerDevice
	err := r.db.WithContext(ctx).
		Where("device_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) GetByToken(ctx context.Context, token string) (*model.WorkerDevice, error) {
	var d model.WorkerDevice
	err := r.db.WithContext(ctx).
		Where("push_token = ?", token).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) ListByWorker(ctx context.Context, workerID string, activeOnly bool) ([]model.WorkerDevice, error) {
	var list []model.WorkerDevice
	db := r.db.WithContext(ctx).Where("worker_id = ?", workerID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("last_seen_at DESC").Find(&list).Error
	return list, err
}

func (r *deviceRepo) Update(ctx context.Context, d *model.WorkerDevice) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *deviceRepo) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkerDevice{}).
		Where("device_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *deviceRepo) DeactivateByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkerDevice{}).
		Where("push_token = ?", token).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}
