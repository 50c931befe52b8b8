package main

import (
	"os"

	"adflow/internal/backend/generator"
	"adflow/internal/backend/handler"
	"adflow/internal/backend/publish"
	"adflow/internal/backend/scraper"
	"adflow/internal/common"
	"adflow/internal/config"
	"adflow/internal/core/postgres/repository"
	"adflow/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := common.Logger().With("component", "backend")

	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		logger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadBackend()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 1. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Error("failed to migrate publish ledger", "error", err)
		os.Exit(1)
	}

	// 2. Initialize collaborators
	publishSvc := publish.NewService(publish.InitRegistry(), repository.NewPublishRepository(db))
	gen, err := generator.New(generator.Settings{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
	})
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	backendHandler := handler.NewBackendHandler(scraper.New(cfg.ScrapeTimeout), gen, publishSvc)

	// 3. Set up routes
	registry := prometheus.NewRegistry()
	requests := metrics.NewRequests(registry, "adflow_backend")

	router := gin.Default()
	router.Use(requests.Middleware())
	router.GET("/metrics", metrics.Handler(registry))
	backendHandler.Register(router)

	// 4. Start server
	logger.Info("backend starting", "addr", cfg.Addr, "text_model", cfg.TextModel, "image_model", cfg.ImageModel)
	if err := router.Run(cfg.Addr); err != nil {
		logger.Error("failed to start backend", "error", err)
		os.Exit(1)
	}
}
