package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sad/backend/config"
	"sad/backend/internal/api/handler"
	"sad/backend/internal/api/router"
	"sad/backend/internal/push"
	"sad/backend/internal/realtime"
	"sad/backend/internal/repository"
	"sad/backend/internal/service"
	"sad/backend/internal/travel"
	"sad/backend/pkg/database"
	"sad/backend/pkg/jwt"
	applogger "sad/backend/pkg/logger"
	"sad/backend/pkg/metrics"
	"sad/backend/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. redis is optional: without it tokens cannot be revoked, rate limits
	// are off, travel legs are not cached and realtime stays in-process
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}

	// 5. metrics
	collector := metrics.New()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 6. infrastructure
	jwtMgr := jwt.NewManager(&cfg.Auth)

	var (
		bus    realtime.Bus
		cache  travel.Cache
		tokens service.TokenStore
	)
	if rdb != nil {
		bus, cache, tokens = rdb, rdb, rdb
	}
	hub := realtime.NewHub(bus, logger)
	streamer := realtime.NewStreamer(hub, cfg.Server.CORS.AllowOrigins, collector.RealtimeClients, logger)

	provider := travel.NewProvider(&cfg.Routing, cache, logger)
	planner := travel.NewPlanner(provider, cfg.Routing.Concurrency, collector.TravelProviderCalls)

	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, quiet hours use UTC", zap.String("timezone", cfg.Database.Timezone), zap.Error(err))
		loc = time.UTC
	}

	// 7. repository → service → handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, service.Deps{
		Tokens:   tokens,
		Realtime: hub,
		Push:     push.NewSender(&cfg.Push, logger),
		Planner:  planner,
		Metrics:  collector,
		Location: loc,
	}, logger)
	h := handler.NewHandler(svc, streamer)

	// 8. router
	engine := router.Setup(cfg, h, router.Deps{
		JWT:      jwtMgr,
		Redis:    rdb,
		DB:       db,
		Registry: registry,
		Metrics:  collector,
	}, logger)

	// 9. HTTP server with graceful shutdown. No WriteTimeout: the
	// notification WebSocket is long lived.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
