package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/config"
	"sad/backend/internal/api/handler"
	"sad/backend/internal/api/middleware"
	"sad/backend/pkg/jwt"
	"sad/backend/pkg/metrics"
	"sad/backend/pkg/redis"
)

// Deps infrastructure the router needs besides the handlers.
// Redis, DB, Registry and Metrics may be nil.
type Deps struct {
	JWT      *jwt.Manager
	Redis    *redis.Client
	DB       *gorm.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
}

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// nil *redis.Client must not become a non-nil interface
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if deps.Redis != nil {
		blacklist = deps.Redis
		limiter = deps.Redis
	}

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── health and metrics ──
	r.GET("/health", healthHandler(deps))
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	authn := middleware.JWTAuth(deps.JWT, blacklist)
	apiLimit := middleware.RateLimit(limiter, 300, time.Minute)
	admin := middleware.AdminOnly()
	self := middleware.SelfOrAdmin("id")

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(limiter, 30, time.Minute), h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(authn, apiLimit)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/users", admin, h.Auth.CreateAuthUser)

			registerWorkerRoutes(authorized.Group("/workers"), h, admin, self)

			users := authorized.Group("/users", admin)
			{
				users.GET("", h.ServiceUser.ListUsers)
				users.POST("", h.ServiceUser.CreateUser)
				users.GET("/:id", h.ServiceUser.GetUser)
				users.PUT("/:id", h.ServiceUser.UpdateUser)
				users.DELETE("/:id", h.ServiceUser.DeleteUser)
				users.GET("/:id/hours", h.ServiceUser.GetHours)
			}

			assignments := authorized.Group("/assignments", admin)
			{
				assignments.GET("", h.Assignment.ListAssignments)
				assignments.POST("", h.Assignment.CreateAssignment)
				assignments.GET("/:id", h.Assignment.GetAssignment)
				assignments.PUT("/:id", h.Assignment.UpdateAssignment)
				assignments.DELETE("/:id", h.Assignment.DeleteAssignment)
			}

			holidays := authorized.Group("/holidays")
			{
				holidays.GET("", h.Holiday.ListHolidays)
				holidays.GET("/check", h.Holiday.CheckHoliday)
				holidays.GET("/export.ics", h.Holiday.ExportHolidays)
				holidays.POST("", admin, h.Holiday.CreateHoliday)
				holidays.POST("/import", admin, h.Holiday.ImportHolidays)
				holidays.PUT("/:id", admin, h.Holiday.UpdateHoliday)
				holidays.DELETE("/:id", admin, h.Holiday.DeleteHoliday)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.GET("/ws", h.Notification.Stream)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.DeleteNotification)
				notifications.POST("/send", admin, h.Notification.SendNotification)
			}
			authorized.POST("/test-notifications", h.Notification.SendTest)

			devices := authorized.Group("/devices")
			{
				devices.GET("", h.Device.ListDevices)
				devices.POST("", h.Device.RegisterDevice)
				devices.DELETE("/:id", h.Device.DeactivateDevice)
			}

			authorized.GET("/notification-settings", h.Settings.GetSettings)
			authorized.PUT("/notification-settings", h.Settings.UpdateSettings)
		}
	}

	// unversioned paths kept for older app builds
	legacy := r.Group("/api", authn, apiLimit)
	{
		registerWorkerRoutes(legacy.Group("/workers"), h, admin, self)
		legacy.POST("/test-notifications", h.Notification.SendTest)
	}

	return r
}

func registerWorkerRoutes(g *gin.RouterGroup, h *handler.Handler, admin, self gin.HandlerFunc) {
	g.GET("", admin, h.Worker.ListWorkers)
	g.POST("", admin, h.Worker.CreateWorker)
	g.GET("/me", h.Worker.GetMe)
	g.GET("/:id", self, h.Worker.GetWorker)
	g.PUT("/:id", admin, h.Worker.UpdateWorker)
	g.DELETE("/:id", admin, h.Worker.DeleteWorker)
	g.GET("/:id/day", self, h.Worker.GetDay)
	g.GET("/:id/route", self, h.Route.GetRoute)
	g.GET("/:id/hours", self, h.Worker.GetHours)
	g.GET("/:id/export", self, h.Export.ExportWorkerMonth)
}

func healthHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}

		if deps.DB != nil {
			checks["database"] = "ok"
			if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := deps.Redis.Ping(ctx); err != nil {
				// optional dependency
				checks["redis"] = "degraded"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
