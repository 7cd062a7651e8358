package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/realtime"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// NotificationHandler the worker's notification feed and admin broadcasts
type NotificationHandler struct {
	notificationSvc service.NotificationService
	streamer        *realtime.Streamer
}

// NewNotificationHandler creates a NotificationHandler. streamer may be nil,
// which disables the WebSocket feed.
func NewNotificationHandler(notificationSvc service.NotificationService, streamer *realtime.Streamer) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc, streamer: streamer}
}

// ListNotifications newest first, expired ones hidden
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	list, total, err := h.notificationSvc.List(c.Request.Context(), workerID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), workerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, count)
}

// MarkRead
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), id, workerID); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.MarkAllRead(c.Request.Context(), workerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// DeleteNotification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.Delete(c.Request.Context(), id, workerID); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// SendNotification to the listed workers, or to every active worker (admin)
// POST /api/v1/notifications/send
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.Send(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// SendTest a test notification. Workers may only target themselves.
// POST /api/v1/test-notifications
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req dto.TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerWorkerID := CallerWorkerID(c)
	if !IsAdmin(c) && req.WorkerID != "" && req.WorkerID != callerWorkerID {
		response.Forbidden(c, 10003, "access denied")
		return
	}

	result, err := h.notificationSvc.SendTest(c.Request.Context(), &req, callerWorkerID, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Created(c, result)
}

// Stream upgrades to a WebSocket carrying the caller's new notifications.
// Browsers cannot set headers on the upgrade, so the token comes as ?token=.
// GET /api/v1/notifications/ws
func (h *NotificationHandler) Stream(c *gin.Context) {
	workerID, ok := MustGetWorkerID(c)
	if !ok {
		return
	}
	if h.streamer == nil {
		response.ServiceUnavailable(c, 16003, "realtime feed unavailable")
		return
	}

	h.streamer.Serve(c.Request.Context(), c.Writer, c.Request, workerID)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 16001, "notification not found")
	case errors.Is(err, service.ErrNoRecipients):
		response.BadRequest(c, 16002, "no recipients")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12001, "worker not found")
	default:
		response.InternalError(c)
	}
}
