package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// AuthHandler login, tokens and accounts
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken exchanges a refresh token for a new pair; the old one is revoked.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "refresh_token is required")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the access token of the request.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateAuthUser creates a login, optionally linked to a worker (admin).
// POST /api/v1/auth/users
func (h *AuthHandler) CreateAuthUser(c *gin.Context) {
	var req dto.CreateAuthUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	user, err := h.authSvc.CreateAuthUser(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "wrong email or password")
	case errors.Is(err, service.ErrAccountDisabled):
		response.Forbidden(c, 11002, "account disabled")
	case errors.Is(err, service.ErrWorkerNotLinked):
		response.Forbidden(c, 11003, "no worker profile linked to this account")
	case errors.Is(err, service.ErrInvalidRefresh):
		response.Unauthorized(c, 11004, "invalid or expired refresh token")
	case errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, 11005, "token revoked")
	case errors.Is(err, service.ErrAuthUserNotFound):
		response.NotFound(c, 11006, "user not found")
	case errors.Is(err, service.ErrOldPasswordWrong):
		response.BadRequest(c, 11007, "current password is wrong")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11008, "email already registered")
	case errors.Is(err, service.ErrWorkerAlreadyLinked):
		response.Conflict(c, 11009, "worker already has a login")
	case errors.Is(err, service.ErrRoleNotAllowed):
		response.Error(c, http.StatusForbidden, 11010, "you may not grant this role")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12001, "worker not found")
	default:
		response.InternalError(c)
	}
}
