package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Aravind22s/MedTracker/internal/assistant"
	"github.com/Aravind22s/MedTracker/internal/config"
	"github.com/Aravind22s/MedTracker/internal/database"
	"github.com/Aravind22s/MedTracker/internal/handlers"
	"github.com/Aravind22s/MedTracker/internal/logger"
	"github.com/Aravind22s/MedTracker/internal/middleware"
	"github.com/Aravind22s/MedTracker/internal/monitoring"
	"github.com/Aravind22s/MedTracker/internal/reminder"
	"github.com/Aravind22s/MedTracker/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional in production

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Failed to load configuration:", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("❌ Failed to build logger:", err)
	}
	defer zlog.Sync()

	if err := utils.EnsureJWTReady(); err != nil {
		log.Fatal("❌ JWT configuration error:", err)
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}
	defer database.CloseDB()
	database.CreateTables()

	handlers.SetMonitoringService(monitoring.NewService(time.Now()))

	if cfg.AssistantAPIKey != "" {
		handlers.SetAssistantClient(assistant.New(assistant.Config{
			BaseURL: cfg.AssistantBaseURL,
			APIKey:  cfg.AssistantAPIKey,
			Model:   cfg.AssistantModel,
		}))
	} else {
		log.Println("ASSISTANT_API_KEY is not set; assistant endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pollInterval := time.Duration(cfg.ReminderPollSeconds) * time.Second
	engine := reminder.New(reminder.NewLogNotifier(zlog), zlog.Named("reminder"), pollInterval)
	source := &reminder.StoreSource{DB: database.DB}
	go engine.Run(ctx)
	go reminder.Refresh(ctx, engine, source, 2*pollInterval, zlog.Named("reminder"))

	router := gin.Default()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(monitoring.RequestMetricsMiddleware())

	// Public endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/api/status", handlers.Status)
	router.POST("/auth/signup", handlers.Signup)
	router.POST("/auth/login", handlers.Login)
	router.GET("/monitoring/snapshot", handlers.MonitorSnapshot)

	// Authenticated endpoints
	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(), middleware.StoreAvailabilityMiddleware())
	{
		api.GET("/medicines", handlers.GetMedicines)
		api.POST("/medicines", handlers.CreateMedicine)
		api.PUT("/medicines/:id", handlers.UpdateMedicine)
		api.DELETE("/medicines/:id", handlers.DeleteMedicine)
		api.POST("/medicines/:id/snooze", handlers.SnoozeMedicine)

		api.GET("/logs", handlers.GetDoseLogs)
		api.POST("/logs", handlers.CreateDoseLog)

		api.GET("/analytics", handlers.GetAnalytics)
		api.GET("/behavior-analysis", handlers.GetBehaviorAnalysis)

		api.GET("/user/me", handlers.GetMe)
		api.PUT("/user/settings", handlers.UpdateSettings)
		api.DELETE("/user/me", handlers.DeleteProfile)

		api.POST("/assistant/parse-medicine", handlers.ParseMedicine)
		api.POST("/assistant/chat", handlers.Chat)
		api.POST("/assistant/insights", handlers.Insights)
		api.POST("/assistant/translate", handlers.Translate)
	}

	log.Println("🚀 MedTracker API starting on :" + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ Server failed to start:", err)
	}
}
