package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/saeid-a/NutriScanBack/internal/config"
	"github.com/saeid-a/NutriScanBack/internal/database"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/routes"
)

// Food photos are capped at 10MB; leave room for the multipart envelope.
const bodyLimitBytes = 12 * 1024 * 1024

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and Redis
	if cfg.DBUrl == "" {
		appLog.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	defer database.CloseDB()

	if err := database.ConnectRedis(ctx, cfg.RedisURL); err != nil {
		appLog.Fatal("Failed to connect to redis", "error", err)
	}
	defer database.CloseRedis()

	// 3. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "NutriScan",
		BodyLimit: bodyLimitBytes,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(ctx, app, cfg, database.DB, database.Redis, appLog); err != nil {
		appLog.Fatal("Failed to register routes", "error", err)
	}

	// 4. Start Server
	go func() {
		<-ctx.Done()
		appLog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLog.Error("Server shutdown failed", "error", err)
		}
	}()

	appLog.Info("Server starting", "port", cfg.Port, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("Server failed to start", "error", err)
	}
}
