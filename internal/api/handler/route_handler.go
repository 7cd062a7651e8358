package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// RouteHandler daily routes with travel legs
type RouteHandler struct {
	routeSvc service.RouteService
}

// NewRouteHandler creates a RouteHandler
func NewRouteHandler(routeSvc service.RouteService) *RouteHandler {
	return &RouteHandler{routeSvc: routeSvc}
}

// GetRoute
// GET /api/v1/workers/:id/route?date=YYYY-MM-DD
func (h *RouteHandler) GetRoute(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.DateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date is required")
		return
	}

	route, err := h.routeSvc.WorkerRoute(c.Request.Context(), id, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkerNotFound):
			response.NotFound(c, 12001, "worker not found")
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 19001, "invalid date, expected YYYY-MM-DD")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, route)
}
