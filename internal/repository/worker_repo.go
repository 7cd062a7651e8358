package repository

import (
	"context"

	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// WorkerFilter list filters
type WorkerFilter struct {
	Search string
	Active *bool
}

// WorkerRepository worker data access
type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	GetByEmail(ctx context.Context, email string) (*model.Worker, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*model.Worker, error)
	List(ctx context.Context, filter WorkerFilter, offset, limit int) ([]model.Worker, int64, error)
	ListActive(ctx context.Context) ([]model.Worker, error)
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type workerRepo struct {
	db *gorm.DB
}

// NewWorkerRepo creates a WorkerRepository.
func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) Create(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", id).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) GetByEmail(ctx context.Context, email string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) GetByAuthUserID(ctx context.Context, authUserID string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).
		Where("auth_user_id = ?", authUserID).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) List(ctx context.Context, filter WorkerFilter, offset, limit int) ([]model.Worker, int64, error) {
	var workers []model.Worker
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Worker{})
	if filter.Search != "" {
		p := searchPattern(filter.Search)
		db = db.Where("name ILIKE ? OR surname ILIKE ? OR email ILIKE ?", p, p, p)
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC, surname ASC").
		Find(&workers).Error; err != nil {
		return nil, 0, err
	}

	return workers, total, nil
}

func (r *workerRepo) ListActive(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&workers).Error
	return workers, err
}

func (r *workerRepo) Update(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Save(worker).Error
}

func (r *workerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Worker{}).
		Where("worker_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
			"is_active":  false,
		}).Error
}
