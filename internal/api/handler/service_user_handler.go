package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// ServiceUserHandler the people receiving care
type ServiceUserHandler struct {
	userSvc       service.ServiceUserService
	assignmentSvc service.AssignmentService
}

// NewServiceUserHandler creates a ServiceUserHandler
func NewServiceUserHandler(userSvc service.ServiceUserService, assignmentSvc service.AssignmentService) *ServiceUserHandler {
	return &ServiceUserHandler{userSvc: userSvc, assignmentSvc: assignmentSvc}
}

// ListUsers
// GET /api/v1/users
func (h *ServiceUserHandler) ListUsers(c *gin.Context) {
	var req dto.ServiceUserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	list, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetUser
// GET /api/v1/users/:id
func (h *ServiceUserHandler) GetUser(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceUserError(c, err)
		return
	}

	response.OK(c, user)
}

// CreateUser
// POST /api/v1/users
func (h *ServiceUserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateServiceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleServiceUserError(c, err)
		return
	}

	response.Created(c, user)
}

// UpdateUser
// PUT /api/v1/users/:id
func (h *ServiceUserHandler) UpdateUser(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateServiceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleServiceUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser refused while the user has active assignments
// DELETE /api/v1/users/:id
func (h *ServiceUserHandler) DeleteUser(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleServiceUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetHours planned versus contracted hours of the user in a month
// GET /api/v1/users/:id/hours?year=&month=
func (h *ServiceUserHandler) GetHours(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.MonthlyHoursRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "year and month are required")
		return
	}

	hours, err := h.assignmentSvc.MonthlyHours(c.Request.Context(), service.SubjectUser, id, req.Year, req.Month)
	if err != nil {
		h.handleServiceUserError(c, err)
		return
	}

	response.OK(c, hours)
}

func (h *ServiceUserHandler) handleServiceUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrServiceUserNotFound):
		response.NotFound(c, 13001, "user not found")
	case errors.Is(err, service.ErrServiceUserCodeTaken):
		response.Conflict(c, 13002, "client code already in use")
	case errors.Is(err, service.ErrServiceUserHasAssignments):
		response.Conflict(c, 13003, "user still has active assignments")
	default:
		response.InternalError(c)
	}
}
