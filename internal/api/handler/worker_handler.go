package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// WorkerHandler workers and their day, hours and profile
type WorkerHandler struct {
	workerSvc     service.WorkerService
	assignmentSvc service.AssignmentService
}

// NewWorkerHandler creates a WorkerHandler
func NewWorkerHandler(workerSvc service.WorkerService, assignmentSvc service.AssignmentService) *WorkerHandler {
	return &WorkerHandler{workerSvc: workerSvc, assignmentSvc: assignmentSvc}
}

// ListWorkers
// GET /api/v1/workers
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	var req dto.WorkerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	list, total, err := h.workerSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetWorker
// GET /api/v1/workers/:id
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, worker)
}

// GetMe profile of the worker linked to the token
// GET /api/v1/workers/me
func (h *WorkerHandler) GetMe(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.GetByID(c.Request.Context(), workerID)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, worker)
}

// CreateWorker
// POST /api/v1/workers
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req dto.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.Created(c, worker)
}

// UpdateWorker
// PUT /api/v1/workers/:id
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	worker, err := h.workerSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, worker)
}

// DeleteWorker soft delete
// DELETE /api/v1/workers/:id
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.workerSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetDay the worker's visits on a date
// GET /api/v1/workers/:id/day?date=YYYY-MM-DD
func (h *WorkerHandler) GetDay(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.DateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date is required")
		return
	}

	day, err := h.assignmentSvc.WorkerDay(c.Request.Context(), id, req.Date)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, day)
}

// GetHours planned hours of the worker in a month
// GET /api/v1/workers/:id/hours?year=&month=
func (h *WorkerHandler) GetHours(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.MonthlyHoursRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "year and month are required")
		return
	}

	hours, err := h.assignmentSvc.MonthlyHours(c.Request.Context(), service.SubjectWorker, id, req.Year, req.Month)
	if err != nil {
		h.handleWorkerError(c, err)
		return
	}

	response.OK(c, hours)
}

func (h *WorkerHandler) handleWorkerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12001, "worker not found")
	case errors.Is(err, service.ErrWorkerEmailTaken):
		response.Conflict(c, 12002, "worker email already in use")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "invalid date, expected YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
