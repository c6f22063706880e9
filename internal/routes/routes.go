package routes

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/saeid-a/NutriScanBack/internal/config"
	"github.com/saeid-a/NutriScanBack/internal/handlers"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/middleware"
	"github.com/saeid-a/NutriScanBack/internal/onboarding"
	"github.com/saeid-a/NutriScanBack/internal/repository"
	"github.com/saeid-a/NutriScanBack/internal/services"
)

func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, log *logger.Logger) error {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	foodLogRepo := repository.NewFoodLogRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	deps := services.FoodLogDeps{
		LogRepo:     foodLogRepo,
		ProfileRepo: profileRepo,
		Quota:       services.NewScanQuota(rdb, cfg.FreeDailyScans, log),
		Log:         log,
	}

	if cfg.StorageDriver == "s3" || cfg.FoodImageGuard {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		if cfg.StorageDriver == "s3" && cfg.StorageConfigured() {
			deps.Storage = services.NewS3StorageService(awsCfg, cfg.S3Bucket, cfg.S3PublicBaseURL)
		}
		if cfg.FoodImageGuard {
			deps.Guard = services.NewRekognitionFoodGuard(awsCfg)
		}
	} else if cfg.StorageConfigured() {
		deps.Storage = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}
	if deps.Storage == nil {
		log.Warn("food image storage is not configured, scans will not keep photos")
	}

	aiGateway := services.NewAIGatewayClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIVisionModel, cfg.AISuggestionModel)
	deps.Classifier = aiGateway
	deps.Suggester = aiGateway

	var subscriptionService *services.SubscriptionService
	if cfg.PaymentsConfigured() {
		subscriptionService = services.NewSubscriptionService(db, paymentRepo, services.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), log)
	} else {
		log.Warn("razorpay keys are not set, payments are disabled")
		subscriptionService = services.NewSubscriptionService(db, paymentRepo, nil, log)
	}

	onboardingService := services.NewOnboardingService(onboarding.NewRedisStore(rdb), profileRepo, log)
	profileService := services.NewProfileService(profileRepo)
	foodLogService := services.NewFoodLogService(deps)

	authHandler := handlers.NewAuthHandler(db, userRepo, profileRepo, cfg.JWTSecret, log)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService, log)
	profileHandler := handlers.NewProfileHandler(profileService)
	foodHandler := handlers.NewFoodHandler(foodLogService, log)
	paymentHandler := handlers.NewPaymentHandler(subscriptionService, log)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	authProtected.Post("/users/onboarding", middleware.RequireRole("user"), onboardingHandler.UserOnboarding)

	wizard := authProtected.Group("/onboarding")
	wizard.Get("", onboardingHandler.GetState)
	wizard.Put("/answers", onboardingHandler.Answer)
	wizard.Post("/next", onboardingHandler.Next)
	wizard.Post("/back", onboardingHandler.Back)
	wizard.Post("/complete", onboardingHandler.Complete)

	authProtected.Get("/profile", profileHandler.GetProfile)
	authProtected.Put("/profile", profileHandler.UpdateProfile)

	food := authProtected.Group("/food")
	food.Post("/scan", foodHandler.Scan)
	food.Post("/logs", foodHandler.CreateLog)
	food.Get("/logs", foodHandler.ListLogs)
	food.Delete("/logs/:id", foodHandler.DeleteLog)

	authProtected.Get("/summary", foodHandler.Summary)
	authProtected.Post("/meals/suggestions", foodHandler.Suggestions)

	payments := authProtected.Group("/payments")
	payments.Get("/plans", paymentHandler.Plans)
	payments.Post("/orders", paymentHandler.CreateOrder)
	payments.Post("/verify", paymentHandler.Verify)
	payments.Get("", paymentHandler.List)

	return nil
}
