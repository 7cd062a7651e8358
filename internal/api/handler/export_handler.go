package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWorkerMonth the worker's visits of a month
// GET /api/v1/workers/:id/export?year=&month=
func (h *ExportHandler) ExportWorkerMonth(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.MonthlyHoursRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "year and month are required")
		return
	}

	buf, filename, err := h.exportSvc.ExportWorkerMonth(c.Request.Context(), id, req.Year, req.Month)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12001, "worker not found")
	default:
		response.InternalError(c)
	}
}
