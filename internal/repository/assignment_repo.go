package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
	pkgerrors "sad/backend/pkg/errors"
)

// AssignmentFilter list filters; empty fields are ignored.
type AssignmentFilter struct {
	WorkerID string
	UserID   string
	Status   string
}

// AssignmentRepository assignment data access
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]model.Assignment, int64, error)
	// ListActiveInRange returns active assignments whose date span overlaps [from, to], with worker and service user loaded.
	ListActiveInRange(ctx context.Context, filter AssignmentFilter, from, to time.Time) ([]model.Assignment, error)
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
	// Update writes a and bumps its version; returns ErrOptimisticLock when the stored version moved on.
	Update(ctx context.Context, a *model.Assignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo creates an AssignmentRepository.
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("User").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func applyAssignmentFilter(db *gorm.DB, filter AssignmentFilter) *gorm.DB {
	if filter.WorkerID != "" {
		db = db.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]model.Assignment, int64, error) {
	var list []model.Assignment
	var total int64

	db := applyAssignmentFilter(r.db.WithContext(ctx).Model(&model.Assignment{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Worker").Preload("User").
		Offset(offset).Limit(limit).
		Order("start_date DESC, created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *assignmentRepo) ListActiveInRange(ctx context.Context, filter AssignmentFilter, from, to time.Time) ([]model.Assignment, error) {
	var list []model.Assignment
	filter.Status = model.AssignmentStatusActive
	db := applyAssignmentFilter(r.db.WithContext(ctx), filter)
	err := db.Preload("Worker").Preload("User").
		Where("start_date <= ?", to).
		Where("end_date IS NULL OR end_date >= ?", from).
		Order("start_date ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("user_id = ? AND status = ?", userID, model.AssignmentStatusActive).
		Count(&n).Error
	return n, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	oldVersion := a.Version
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ? AND version = ?", a.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"worker_id":       a.WorkerID,
			"user_id":         a.UserID,
			"assignment_type": a.AssignmentType,
			"start_date":      a.StartDate,
			"end_date":        a.EndDate,
			"schedule":        a.Schedule,
			"status":          a.Status,
			"notes":           a.Notes,
			"updated_by":      a.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version = oldVersion + 1
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
