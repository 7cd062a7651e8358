package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
	"sad/backend/pkg/database"
)

// NotificationRepository worker notification feed data access
type NotificationRepository interface {
	Create(ctx context.Context, n *model.WorkerNotification) error
	GetByID(ctx context.Context, id string) (*model.WorkerNotification, error)
	// ListForWorker returns the non-expired feed of a worker, newest first.
	ListForWorker(ctx context.Context, workerID string, unreadOnly bool, now time.Time, offset, limit int) ([]model.WorkerNotification, int64, error)
	CountUnread(ctx context.Context, workerID string, now time.Time) (int64, error)
	MarkRead(ctx context.Context, id, workerID string, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, workerID string, at time.Time) (int64, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id, workerID string) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a NotificationRepository.
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) workerScope(workerID string) database.Scope {
	return database.Scope{Role: model.RoleWorker, WorkerID: workerID}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.WorkerNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.WorkerNotification, error) {
	var n model.WorkerNotification
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListForWorker(ctx context.Context, workerID string, unreadOnly bool, now time.Time, offset, limit int) ([]model.WorkerNotification, int64, error) {
	var list []model.WorkerNotification
	var total int64

	err := database.WithScope(ctx, r.db, r.workerScope(workerID), func(tx *gorm.DB) error {
		db := tx.Model(&model.WorkerNotification{}).
			Where("worker_id = ?", workerID).
			Where("expires_at IS NULL OR expires_at > ?", now)
		if unreadOnly {
			db = db.Where("read_at IS NULL")
		}
		if err := db.Count(&total).Error; err != nil {
			return err
		}
		return db.Order("created_at DESC").
			Offset(offset).Limit(limit).
			Find(&list).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, workerID string, now time.Time) (int64, error) {
	var n int64
	err := database.WithScope(ctx, r.db, r.workerScope(workerID), func(tx *gorm.DB) error {
		return tx.Model(&model.WorkerNotification{}).
			Where("worker_id = ? AND read_at IS NULL", workerID).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Count(&n).Error
	})
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, workerID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.WorkerNotification{}).
		Where("notification_id = ? AND worker_id = ?", id, workerID).
		Where("read_at IS NULL").
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, workerID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.WorkerNotification{}).
		Where("worker_id = ? AND read_at IS NULL", workerID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *notificationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkerNotification{}).
		Where("notification_id = ?", id).
		Update("sent_at", at).Error
}

func (r *notificationRepo) Delete(ctx context.Context, id, workerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("notification_id = ? AND worker_id = ?", id, workerID).
		Delete(&model.WorkerNotification{})
	return result.RowsAffected, result.Error
}
