package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sad/backend/config"
	"sad/backend/internal/push"
	"sad/backend/internal/repository"
	"sad/backend/internal/travel"
	"sad/backend/pkg/jwt"
	"sad/backend/pkg/metrics"
)

// TokenStore token blacklist; *redis.Client implements it.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// RealtimePublisher pushes a payload to a worker's open connections;
// *realtime.Hub implements it.
type RealtimePublisher interface {
	Publish(ctx context.Context, workerID string, payload []byte) error
}

// Deps optional infrastructure. Nil members disable the feature that needs them.
type Deps struct {
	Tokens     TokenStore
	Realtime   RealtimePublisher
	Push       push.Sender
	Planner    *travel.Planner
	Metrics    *metrics.Collector
	HTTPClient *http.Client   // holiday calendar downloads
	Location   *time.Location // local time for quiet hours
	Now        func() time.Time
}

// Service aggregates every service.
type Service struct {
	Auth         AuthService
	Worker       WorkerService
	ServiceUser  ServiceUserService
	Assignment   AssignmentService
	Holiday      HolidayService
	Notification NotificationService
	Device       DeviceService
	Settings     SettingsService
	Route        RouteService
	Export       ExportService
}

// NewService wires every service.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: icsFetchTimeout}
	}
	if deps.Planner == nil {
		deps.Planner = travel.NewPlanner(travel.Haversine{SpeedKMH: cfg.Routing.AverageSpeedKMH}, cfg.Routing.Concurrency, nil)
	}

	notification := NewNotificationService(repo, deps, logger)
	cal := newCalendarSource(repo, cfg.Holidays.DefaultRegion)
	assignment := NewAssignmentService(repo, cal, notification, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, deps.Tokens, logger),
		Worker:       NewWorkerService(repo, logger),
		ServiceUser:  NewServiceUserService(repo, logger),
		Assignment:   assignment,
		Holiday:      NewHolidayService(cfg, repo, notification, deps, logger),
		Notification: notification,
		Device:       NewDeviceService(repo, deps.Now, logger),
		Settings:     NewSettingsService(repo, logger),
		Route:        NewRouteService(assignment, deps.Planner, logger),
		Export:       NewExportService(repo, cal, logger),
	}
}
