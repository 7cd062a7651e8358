package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// DeviceHandler push devices of the calling worker
type DeviceHandler struct {
	deviceSvc service.DeviceService
}

// NewDeviceHandler creates a DeviceHandler
func NewDeviceHandler(deviceSvc service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceSvc: deviceSvc}
}

// ListDevices
// GET /api/v1/devices
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	list, err := h.deviceSvc.List(c.Request.Context(), workerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// RegisterDevice upsert by push token
// POST /api/v1/devices
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	device, err := h.deviceSvc.Register(c.Request.Context(), workerID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, device)
}

// DeactivateDevice
// DELETE /api/v1/devices/:id
func (h *DeviceHandler) DeactivateDevice(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	if err := h.deviceSvc.Deactivate(c.Request.Context(), id, workerID); err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			response.NotFound(c, 17001, "device not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
