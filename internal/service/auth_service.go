package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sad/backend/config"
	"sad/backend/internal/dto"
	"sad/backend/internal/model"
	"sad/backend/internal/repository"
	"sad/backend/pkg/jwt"
)

// ── auth errors ──

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrWorkerNotLinked     = errors.New("no worker profile linked to this account")
	ErrInvalidRefresh      = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrAuthUserNotFound    = errors.New("user not found")
	ErrOldPasswordWrong    = errors.New("current password is wrong")
	ErrEmailTaken          = errors.New("email already registered")
	ErrWorkerAlreadyLinked = errors.New("worker already has a login")
	ErrRoleNotAllowed      = errors.New("caller may not grant this role")
)

// AuthService authentication use cases
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout revokes the access token identified by jti until exp.
	Logout(ctx context.Context, jti string, exp time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	CreateAuthUser(ctx context.Context, req *dto.CreateAuthUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService creates an AuthService; tokens may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the login
	user, err := s.repo.AuthUser.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("query auth user failed", zap.Error(err))
		return nil, err
	}

	// 2. verify the password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// 3. workers carry their worker_id in the token
	worker, err := s.resolveWorker(ctx, user)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(user, worker, req.RememberMe)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AuthUser.UpdateLastSignIn(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("update last sign in failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return resp, nil
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefresh
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token blacklist failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.repo.AuthUser.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("query auth user failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	worker, err := s.resolveWorker(ctx, user)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(user, worker, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// rotate: the presented refresh token cannot be used again
	if s.tokens != nil && claims.ExpiresAt != nil {
		if err := s.tokens.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("revoke used refresh token failed", zap.Error(err))
		}
	}

	return resp, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, exp time.Time) error {
	if s.tokens == nil || jti == "" {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, jti, time.Until(exp)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.AuthUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthUserNotFound
		}
		s.logger.Error("query auth user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var worker *model.Worker
	if user.Role == model.RoleWorker {
		worker, err = s.repo.Worker.GetByAuthUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("query worker failed", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
	}

	resp := toUserResponse(user, worker)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.AuthUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthUserNotFound
		}
		s.logger.Error("query auth user failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedBy = &userID

	if err := s.repo.AuthUser.Update(ctx, user); err != nil {
		s.logger.Error("update password failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── CreateAuthUser ──────────────────────

func (s *authService) CreateAuthUser(ctx context.Context, req *dto.CreateAuthUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	if model.IsAdminRole(req.Role) && callerRole != model.RoleSuperAdmin {
		return nil, ErrRoleNotAllowed
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.AuthUser.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("query auth user failed", zap.Error(err))
		return nil, err
	}

	var worker *model.Worker
	if req.WorkerID != "" {
		w, err := s.repo.Worker.GetByID(ctx, req.WorkerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWorkerNotFound
			}
			s.logger.Error("query worker failed", zap.String("worker_id", req.WorkerID), zap.Error(err))
			return nil, err
		}
		if w.AuthUserID != nil && *w.AuthUserID != "" {
			return nil, ErrWorkerAlreadyLinked
		}
		worker = w
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.AuthUser{
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	if err := s.repo.AuthUser.Create(ctx, user); err != nil {
		s.logger.Error("create auth user failed", zap.Error(err))
		return nil, err
	}

	if worker != nil {
		worker.AuthUserID = &user.ID
		worker.UpdatedBy = &callerID
		if err := s.repo.Worker.Update(ctx, worker); err != nil {
			s.logger.Error("link worker failed", zap.String("worker_id", worker.WorkerID), zap.Error(err))
			return nil, err
		}
	}

	resp := toUserResponse(user, worker)
	return &resp, nil
}

// ── helpers ──

// resolveWorker finds the worker row of a worker login. Rows created before
// the login existed are matched by email and linked on first sign-in.
func (s *authService) resolveWorker(ctx context.Context, user *model.AuthUser) (*model.Worker, error) {
	if user.Role != model.RoleWorker {
		return nil, nil
	}

	worker, err := s.repo.Worker.GetByAuthUserID(ctx, user.ID)
	if err == nil {
		return worker, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("query worker failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	worker, err = s.repo.Worker.GetByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotLinked
		}
		s.logger.Error("query worker failed", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}
	if worker.AuthUserID != nil && *worker.AuthUserID != user.ID {
		return nil, ErrWorkerNotLinked
	}

	worker.AuthUserID = &user.ID
	if err := s.repo.Worker.Update(ctx, worker); err != nil {
		s.logger.Warn("link worker on sign in failed", zap.String("worker_id", worker.WorkerID), zap.Error(err))
	}
	return worker, nil
}

func (s *authService) issue(user *model.AuthUser, worker *model.Worker, rememberMe bool) (*dto.TokenResponse, error) {
	workerID := ""
	if worker != nil {
		workerID = worker.WorkerID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role, workerID)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Role, workerID, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user, worker),
	}, nil
}

func toUserResponse(user *model.AuthUser, worker *model.Worker) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Role:         user.Role,
		LastSignInAt: formatOptionalTimestamp(user.LastSignInAt),
	}
	if worker != nil {
		resp.WorkerID = worker.WorkerID
		resp.Name = worker.FullName()
	}
	return resp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
