package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"adflow/internal/api/handler"
	"adflow/internal/client"
	"adflow/internal/common"
	"adflow/internal/config"
	"adflow/internal/core/ports"
	"adflow/internal/infrastructure/memory"
	infraredis "adflow/internal/infrastructure/redis"
	"adflow/internal/metrics"
	"adflow/internal/orchestrator"
	"adflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logger := common.Logger().With("component", "server")

	// 1. Load configuration
	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		logger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadServer()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 2. Backend collaborators
	backend, err := client.NewBackendClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		logger.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}
	collaborators := orchestrator.Collaborators{
		Fetcher:   backend,
		Text:      backend,
		Image:     backend,
		Publisher: backend,
	}

	// 3. Notification bus: Redis when configured, in process otherwise
	var (
		bus     ports.EventBus
		history ports.NotificationLog
	)
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			logger.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		bus = infraredis.NewRedisEventBus(rdb)
		history = infraredis.NewRedisNotificationLog(rdb, cfg.HistoryLimit, 24*time.Hour)
		logger.Info("using redis notification bus", "addr", cfg.RedisAddr)
	} else {
		bus = memory.NewEventBus()
		history = memory.NewNotificationLog(cfg.HistoryLimit)
		logger.Info("using in-process notification bus")
	}

	// 4. Metrics
	registry := prometheus.NewRegistry()
	stages := metrics.NewStages(registry)
	requests := metrics.NewRequests(registry, "adflow_api")

	// 5. Service and handler
	workflowSvc := service.NewWorkflowService(collaborators, bus, history, stages)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)

	// 6. Set up routes
	router := gin.Default()
	router.Use(requests.Middleware())
	router.GET("/metrics", metrics.Handler(registry))

	api := router.Group("/api/v1")
	workflowHandler.Register(api)

	// 7. Start server
	logger.Info("server starting", "addr", cfg.Addr, "backend", cfg.BackendBaseURL)
	if err := router.Run(cfg.Addr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
