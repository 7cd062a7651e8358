package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// SettingsHandler notification preferences of the calling worker
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// GetSettings defaults when nothing was saved yet
// GET /api/v1/notification-settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	settings, err := h.settingsSvc.Get(c.Request.Context(), workerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, settings)
}

// UpdateSettings partial update
// PUT /api/v1/notification-settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	settings, err := h.settingsSvc.Update(c.Request.Context(), workerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuietHours) {
			response.BadRequest(c, 18001, "quiet hours need both start and end as HH:MM")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, settings)
}
