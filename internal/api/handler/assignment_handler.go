package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	pkgerrors "sad/backend/pkg/errors"
	"sad/backend/pkg/response"
)

// AssignmentHandler worker ↔ user weekly schedules
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler creates an AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments
// GET /api/v1/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	list, total, err := h.assignmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAssignment
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAssignment
// POST /api/v1/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateAssignment carries the version read by the client
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// DeleteAssignment
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 14001, "assignment not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 14002, "end_date is before start_date")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14003, "assignment was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14004, "invalid date, expected YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 14005, "invalid schedule time, expected HH:MM")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12001, "worker not found")
	case errors.Is(err, service.ErrWorkerInactive):
		response.BadRequest(c, 12003, "worker is not active")
	case errors.Is(err, service.ErrServiceUserNotFound):
		response.NotFound(c, 13001, "user not found")
	case errors.Is(err, service.ErrServiceUserInactive):
		response.BadRequest(c, 13004, "user is not active")
	default:
		response.InternalError(c)
	}
}
