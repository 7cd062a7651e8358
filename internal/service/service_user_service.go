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

// ── service user errors ──

var (
	ErrServiceUserNotFound       = errors.New("user not found")
	ErrServiceUserCodeTaken      = errors.New("client code already in use")
	ErrServiceUserHasAssignments = errors.New("user still has active assignments")
)

// ServiceUserService assigned-user use cases
type ServiceUserService interface {
	List(ctx context.Context, req *dto.ServiceUserListRequest) ([]dto.ServiceUserResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.ServiceUserResponse, error)
	Create(ctx context.Context, req *dto.CreateServiceUserRequest, callerID string) (*dto.ServiceUserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateServiceUserRequest, callerID string) (*dto.ServiceUserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type serviceUserService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewServiceUserService creates a ServiceUserService.
func NewServiceUserService(repo *repository.Repository, logger *zap.Logger) ServiceUserService {
	return &serviceUserService{repo: repo, logger: logger}
}

func (s *serviceUserService) List(ctx context.Context, req *dto.ServiceUserListRequest) ([]dto.ServiceUserResponse, int64, error) {
	filter := repository.ServiceUserFilter{
		Search: strings.TrimSpace(req.Search),
		Active: req.Active,
	}
	users, total, err := s.repo.ServiceUser.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ServiceUserResponse, 0, len(users))
	for i := range users {
		result = append(result, toServiceUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *serviceUserService) GetByID(ctx context.Context, id string) (*dto.ServiceUserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toServiceUserResponse(user)
	return &resp, nil
}

func (s *serviceUserService) Create(ctx context.Context, req *dto.CreateServiceUserRequest, callerID string) (*dto.ServiceUserResponse, error) {
	code := strings.TrimSpace(req.ClientCode)
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	user := &model.ServiceUser{
		ClientCode:   code,
		Name:         strings.TrimSpace(req.Name),
		Surname:      strings.TrimSpace(req.Surname),
		Phone:        req.Phone,
		Address:      req.Address,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		MonthlyHours: req.MonthlyHours,
		MedicalNotes: req.MedicalNotes,
		IsActive:     true,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.ServiceUser.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	resp := toServiceUserResponse(user)
	return &resp, nil
}

func (s *serviceUserService) Update(ctx context.Context, id string, req *dto.UpdateServiceUserRequest, callerID string) (*dto.ServiceUserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClientCode != nil {
		code := strings.TrimSpace(*req.ClientCode)
		if code != user.ClientCode {
			if err := s.ensureCodeFree(ctx, code, user.UserID); err != nil {
				return nil, err
			}
			user.ClientCode = code
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Surname != nil {
		user.Surname = strings.TrimSpace(*req.Surname)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.Latitude != nil {
		user.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		user.Longitude = req.Longitude
	}
	if req.MonthlyHours != nil {
		user.MonthlyHours = *req.MonthlyHours
	}
	if req.MedicalNotes != nil {
		user.MedicalNotes = *req.MedicalNotes
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = &callerID

	if err := s.repo.ServiceUser.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toServiceUserResponse(user)
	return &resp, nil
}

func (s *serviceUserService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	active, err := s.repo.Assignment.CountActiveByUser(ctx, id)
	if err != nil {
		s.logger.Error("count user assignments failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if active > 0 {
		return ErrServiceUserHasAssignments
	}

	if err := s.repo.ServiceUser.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *serviceUserService) get(ctx context.Context, id string) (*model.ServiceUser, error) {
	user, err := s.repo.ServiceUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUserNotFound
		}
		s.logger.Error("query user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *serviceUserService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.ServiceUser.GetByClientCode(ctx, code)
	if err == nil {
		if existing.UserID != selfID {
			return ErrServiceUserCodeTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("query user by code failed", zap.Error(err))
		return err
	}
	return nil
}

func toServiceUserResponse(u *model.ServiceUser) dto.ServiceUserResponse {
	return dto.ServiceUserResponse{
		ID:           u.UserID,
		ClientCode:   u.ClientCode,
		Name:         u.Name,
		Surname:      u.Surname,
		FullName:     u.FullName(),
		Phone:        u.Phone,
		Address:      u.Address,
		PostalCode:   u.PostalCode,
		City:         u.City,
		Latitude:     u.Latitude,
		Longitude:    u.Longitude,
		MonthlyHours: u.MonthlyHours,
		MedicalNotes: u.MedicalNotes,
		IsActive:     u.IsActive,
		CreatedAt:    formatTimestamp(u.CreatedAt),
		UpdatedAt:    formatTimestamp(u.UpdatedAt),
	}
}

func toServiceUserBrief(u *model.ServiceUser) dto.ServiceUserBrief {
	if u == nil {
		return dto.ServiceUserBrief{}
	}
	return dto.ServiceUserBrief{
		ID:        u.UserID,
		FullName:  u.FullName(),
		Address:   u.Address,
		Phone:     u.Phone,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
	}
}
