package repository

import (
	"context"

	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// ServiceUserFilter list filters
type ServiceUserFilter struct {
	Search string
	Active *bool
}

// ServiceUserRepository assigned-user data access
type ServiceUserRepository interface {
	Create(ctx context.Context, user *model.ServiceUser) error
	GetByID(ctx context.Context, id string) (*model.ServiceUser, error)
	GetByClientCode(ctx context.Context, code string) (*model.ServiceUser, error)
	List(ctx context.Context, filter ServiceUserFilter, offset, limit int) ([]model.ServiceUser, int64, error)
	Update(ctx context.Context, user *model.ServiceUser) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type serviceUserRepo struct {
	db *gorm.DB
}

// NewServiceUserRepo creates a ServiceUserRepository.
func NewServiceUserRepo(db *gorm.DB) ServiceUserRepository {
	return &serviceUserRepo{db: db}
}

func (r *serviceUserRepo) Create(ctx context.Context, user *model.ServiceUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *serviceUserRepo) GetByID(ctx context.Context, id string) (*model.ServiceUser, error) {
	var user model.ServiceUser
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *serviceUserRepo) GetByClientCode(ctx context.Context, code string) (*model.ServiceUser, error) {
	var user model.ServiceUser
	err := r.db.WithContext(ctx).
		Where("client_code = ?", code).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *serviceUserRepo) List(ctx context.Context, filter ServiceUserFilter, offset, limit int) ([]model.ServiceUser, int64, error) {
	var users []model.ServiceUser
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ServiceUser{})
	if filter.Search != "" {
		p := searchPattern(filter.Search)
		db = db.Where("name ILIKE ? OR surname ILIKE ? OR client_code ILIKE ? OR address ILIKE ?", p, p, p, p)
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("surname ASC, name ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *serviceUserRepo) Update(ctx context.Context, user *model.ServiceUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *serviceUserRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ServiceUser{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
			"is_active":  false,
		}).Error
}
