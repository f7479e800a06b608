package main

import (
	"bencana-service/internal/handler"
	"bencana-service/internal/middleware"
	"bencana-service/internal/model"
	"bencana-service/pkg/config"
	"bencana-service/pkg/database"
	"bencana-service/pkg/jwtutil"
	"bencana-service/pkg/logger"
	"bencana-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting disaster report service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db, &model.User{}, &model.DisasterReport{}); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT service
	jwt := jwtutil.New(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Handlers with their dependencies
	authHandler := handler.NewAuthHandler(db, jwt)
	reportHandler := handler.NewReportHandler(db)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	api := e.Group("/api")

	// Credential routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/protected", authHandler.Protected, middleware.Auth(jwt))

	// Disaster report routes
	reports := api.Group("/bencana")
	reports.GET("", reportHandler.List)
	reports.GET("/stats", reportHandler.Stats)
	reports.GET("/:id", reportHandler.Get)
	reports.POST("", reportHandler.Create)
	reports.PUT("/:id", reportHandler.Update)
	reports.DELETE("/:id", reportHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
