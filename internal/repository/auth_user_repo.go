package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// AuthUserRepository login identity data access
type AuthUserRepository interface {
	Create(ctx context.Context, user *model.AuthUser) error
	GetByID(ctx context.Context, id string) (*model.AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	Update(ctx context.Context, user *model.AuthUser) error
	UpdateLastSignIn(ctx context.Context, id string, at time.Time) error
}

type authUserRepo struct {
	db *gorm.DB
}

// NewAuthUserRepo creates an AuthUserRepository.
func NewAuthUserRepo(db *gorm.DB) AuthUserRepository {
	return &authUserRepo{db: db}
}

func (r *authUserRepo) Create(ctx context.Context, user *model.AuthUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *authUserRepo) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepo) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepo) Update(ctx context.Context, user *model.AuthUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *authUserRepo) UpdateLastSignIn(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at).Error
}
