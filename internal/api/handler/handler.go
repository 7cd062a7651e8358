package handler

import (
	"sad/backend/internal/realtime"
	"sad/backend/internal/service"
)

// Handler aggregates every module's handler
type Handler struct {
	Auth         *AuthHandler
	Worker       *WorkerHandler
	ServiceUser  *ServiceUserHandler
	Assignment   *AssignmentHandler
	Holiday      *HolidayHandler
	Notification *NotificationHandler
	Device       *DeviceHandler
	Settings     *SettingsHandler
	Route        *RouteHandler
	Export       *ExportHandler
}

// NewHandler creates the Handler aggregate. streamer may be nil.
func NewHandler(svc *service.Service, streamer *realtime.Streamer) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Worker:       NewWorkerHandler(svc.Worker, svc.Assignment),
		ServiceUser:  NewServiceUserHandler(svc.ServiceUser, svc.Assignment),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Holiday:      NewHolidayHandler(svc.Holiday),
		Notification: NewNotificationHandler(svc.Notification, streamer),
		Device:       NewDeviceHandler(svc.Device),
		Settings:     NewSettingsHandler(svc.Settings),
		Route:        NewRouteHandler(svc.Route),
		Export:       NewExportHandler(svc.Export),
	}
}
