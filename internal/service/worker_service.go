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

// ── worker errors ──

var (
	ErrWorkerNotFound   = errors.New("worker not found")
	ErrWorkerEmailTaken = errors.New("worker email already in use")
)

// WorkerService worker use cases
type WorkerService interface {
	List(ctx context.Context, req *dto.WorkerListRequest) ([]dto.WorkerResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.WorkerResponse, error)
	Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type workerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkerService creates a WorkerService.
func NewWorkerService(repo *repository.Repository, logger *zap.Logger) WorkerService {
	return &workerService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *workerService) List(ctx context.Context, req *dto.WorkerListRequest) ([]dto.WorkerResponse, int64, error) {
	filter := repository.WorkerFilter{
		Search: strings.TrimSpace(req.Search),
		Active: req.Active,
	}
	workers, total, err := s.repo.Worker.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list workers failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.WorkerResponse, 0, len(workers))
	for i := range workers {
		result = append(result, toWorkerResponse(&workers[i]))
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workerService) GetByID(ctx context.Context, id string) (*dto.WorkerResponse, error) {
	worker, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toWorkerResponse(worker)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *workerService) Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	worker := &model.Worker{
		Name:       strings.TrimSpace(req.Name),
		Surname:    strings.TrimSpace(req.Surname),
		Email:      email,
		Phone:      req.Phone,
		DNI:        strings.ToUpper(strings.TrimSpace(req.DNI)),
		WorkerType: req.WorkerType,
		Address:    req.Address,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		IsActive:   true,
	}
	if worker.WorkerType == "" {
		worker.WorkerType = model.WorkerTypeBoth
	}
	worker.CreatedBy = &callerID
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Create(ctx, worker); err != nil {
		s.logger.Error("create worker failed", zap.Error(err))
		return nil, err
	}

	resp := toWorkerResponse(worker)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *workerService) Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*dto.WorkerResponse, error) {
	worker, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != worker.Email {
			if err := s.ensureEmailFree(ctx, email, worker.WorkerID); err != nil {
				return nil, err
			}
			worker.Email = email
		}
	}
	if req.Name != nil {
		worker.Name = strings.TrimSpace(*req.Name)
	}
	if req.Surname != nil {
		worker.Surname = strings.TrimSpace(*req.Surname)
	}
	if req.Phone != nil {
		worker.Phone = *req.Phone
	}
	if req.DNI != nil {
		worker.DNI = strings.ToUpper(strings.TrimSpace(*req.DNI))
	}
	if req.WorkerType != nil {
		worker.WorkerType = *req.WorkerType
	}
	if req.Address != nil {
		worker.Address = *req.Address
	}
	if req.Latitude != nil {
		worker.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		worker.Longitude = req.Longitude
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Update(ctx, worker); err != nil {
		s.logger.Error("update worker failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toWorkerResponse(worker)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *workerService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Worker.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete worker failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *workerService) get(ctx context.Context, id string) (*model.Worker, error) {
	worker, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("query worker failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return worker, nil
}

func (s *workerService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.Worker.GetByEmail(ctx, email)
	if err == nil {
		if existing.WorkerID != selfID {
			return ErrWorkerEmailTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("query worker by email failed", zap.Error(err))
		return err
	}
	return nil
}

func toWorkerResponse(w *model.Worker) dto.WorkerResponse {
	resp := dto.WorkerResponse{
		ID:         w.WorkerID,
		Name:       w.Name,
		Surname:    w.Surname,
		FullName:   w.FullName(),
		Email:      w.Email,
		Phone:      w.Phone,
		DNI:        w.DNI,
		WorkerType: w.WorkerType,
		Address:    w.Address,
		Latitude:   w.Latitude,
		Longitude:  w.Longitude,
		IsActive:   w.IsActive,
		CreatedAt:  formatTimestamp(w.CreatedAt),
		UpdatedAt:  formatTimestamp(w.UpdatedAt),
	}
	if w.AuthUserID != nil {
		resp.AuthUserID = *w.AuthUserID
	}
	return resp
}
