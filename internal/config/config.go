package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBUrl     string
	RedisURL  string
	JWTSecret string
	AppEnv    string
	LogLevel  string

	StorageDriver      string
	SupabaseURL        string
	SupabaseBucket     string
	SupabaseServiceKey string
	AWSRegion          string
	S3Bucket           string
	S3PublicBaseURL    string
	FoodImageGuard     bool

	AIGatewayURL      string
	AIGatewayKey      string
	AIVisionModel     string
	AISuggestionModel string

	RazorpayKeyID     string
	RazorpayKeySecret string

	FreeDailyScans int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DB_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:          jwtSecret,
		AppEnv:             normalizeEnv(getEnv("APP_ENV", "production")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StorageDriver:      strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", "supabase"))),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "food-images"),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3PublicBaseURL:    getEnv("S3_PUBLIC_BASE_URL", ""),
		FoodImageGuard:     getEnvBool("FOOD_IMAGE_GUARD", false),
		AIGatewayURL:       getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions"),
		AIGatewayKey:       getEnv("AI_GATEWAY_KEY", ""),
		AIVisionModel:      getEnv("AI_VISION_MODEL", "google/gemini-2.5-flash"),
		AISuggestionModel:  getEnv("AI_SUGGESTION_MODEL", "google/gemini-2.5-flash"),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
		FreeDailyScans:     getEnvInt("FREE_DAILY_SCANS", 3),
	}

	if cfg.StorageDriver != "supabase" && cfg.StorageDriver != "s3" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be supabase or s3, got %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) StorageConfigured() bool {
	if c == nil {
		return false
	}
	if c.StorageDriver == "s3" {
		return c.S3Bucket != ""
	}
	return c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}

func (c *Config) PaymentsConfigured() bool {
	return c != nil && c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}
