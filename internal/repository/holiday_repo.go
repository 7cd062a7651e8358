package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// HolidayRepository holiday data access
type HolidayRepository interface {
	Create(ctx context.Context, h *model.Holiday) error
	GetByID(ctx context.Context, id string) (*model.Holiday, error)
	GetByDateRegion(ctx context.Context, date time.Time, region string) (*model.Holiday, error)
	// ListRange returns holidays in [from, to] that apply to region: national
	// rows (empty region) plus rows of the region itself. An empty region
	// returns every row in range.
	ListRange(ctx context.Context, from, to time.Time, region string) ([]model.Holiday, error)
	Update(ctx context.Context, h *model.Holiday) error
	Delete(ctx context.Context, id string) error
}

type holidayRepo struct {
	db *gorm.DB
}

// NewHolidayRepo creates a HolidayRepository.
func NewHolidayRepo(db *gorm.DB) HolidayRepository {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) Create(ctx context.Context, h *model.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *holidayRepo) GetByID(ctx context.Context, id string) (*model.Holiday, error) {
	var h model.Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holidayRepo) GetByDateRegion(ctx context.Context, date time.Time, region string) (*model.Holiday, error) {
	var h model.Holiday
	err := r.db.WithContext(ctx).
		Where("date = ? AND region = ?", date.Format("2006-01-02"), region).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holidayRepo) ListRange(ctx context.Context, from, to time.Time, region string) ([]model.Holiday, error) {
	var list []model.Holiday
	db := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if region != "" {
		db = db.Where("region = '' OR region = ?", region)
	}
	err := db.Order("date ASC").Find(&list).Error
	return list, err
}

func (r *holidayRepo) Update(ctx context.Context, h *model.Holiday) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *holidayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		Delete(&model.Holiday{}).Error
}
