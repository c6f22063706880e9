package handlers

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/repository"
	"github.com/saeid-a/NutriScanBack/internal/services"
)

const maxFoodImageSizeBytes = 10 * 1024 * 1024

type foodTracker interface {
	Scan(ctx context.Context, userID int64, image []byte) (*services.ScanResult, error)
	LogFood(ctx context.Context, userID int64, in repository.CreateFoodLogInput) (*models.FoodLog, error)
	ListDay(ctx context.Context, userID int64, dayStart time.Time) ([]models.FoodLog, error)
	DeleteLog(ctx context.Context, userID int64, id uuid.UUID) error
	Summary(ctx context.Context, userID int64, dayStart time.Time) (*services.DailySummary, error)
	Suggest(ctx context.Context, userID int64, dayStart time.Time) ([]models.MealSuggestion, nutrition.Remaining, error)
}

type FoodHandler struct {
	tracker foodTracker
	log     *logger.Logger
	now     func() time.Time
}

func NewFoodHandler(tracker foodTracker, log *logger.Logger) *FoodHandler {
	return &FoodHandler{
		tracker: tracker,
		log:     log.With("handler", "FoodHandler"),
		now:     time.Now,
	}
}

type createFoodLogRequest struct {
	FoodName     string     `json:"food_name"`
	ServingSize  *string    `json:"serving_size"`
	Calories     *float64   `json:"calories"`
	ProteinG     *float64   `json:"protein_g"`
	CarbsG       *float64   `json:"carbs_g"`
	FatG         *float64   `json:"fat_g"`
	FiberG       *float64   `json:"fiber_g"`
	MealType     string     `json:"meal_type"`
	FoodImageURL *string    `json:"food_image_url"`
	LoggedAt     *time.Time `json:"logged_at"`
}

func (h *FoodHandler) mapFoodError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFood):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrQuotaExceeded):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error(), "upgrade_required": true})
	case errors.Is(err, services.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUpstreamPayment):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "AI credits exhausted, please try again later"})
	case errors.Is(err, services.ErrClassifierUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Food analysis is temporarily unavailable"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrOnboardingIncomplete):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

func (h *FoodHandler) day(c *fiber.Ctx) (time.Time, error) {
	return parseDay(c.Query("date"), c.Query("tz"), h.now())
}

func (h *FoodHandler) Scan(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is empty"})
	}
	if fileHeader.Size > maxFoodImageSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file exceeds 10MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open image file"})
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxFoodImageSizeBytes))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read image file"})
	}

	result, err := h.tracker.Scan(c.Context(), userID, image)
	if err != nil {
		return h.mapFoodError(c, err, "Failed to analyze food")
	}
	return c.JSON(result)
}

func (h *FoodHandler) CreateLog(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createFoodLogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.MealType = strings.ToLower(strings.TrimSpace(req.MealType))
	if validationErr := validateFoodLogRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	in := repository.CreateFoodLogInput{
		FoodName:     strings.TrimSpace(req.FoodName),
		ServingSize:  req.ServingSize,
		Calories:     req.Calories,
		ProteinG:     req.ProteinG,
		CarbsG:       req.CarbsG,
		FatG:         req.FatG,
		FiberG:       req.FiberG,
		MealType:     req.MealType,
		FoodImageURL: req.FoodImageURL,
	}
	if req.LoggedAt != nil {
		in.LoggedAt = req.LoggedAt.UTC()
	}

	log, err := h.tracker.LogFood(c.Context(), userID, in)
	if err != nil {
		return h.mapFoodError(c, err, "Failed to log food")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"food_log": log})
}

func (h *FoodHandler) ListLogs(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	dayStart, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logs, err := h.tracker.ListDay(c.Context(), userID, dayStart)
	if err != nil {
		return h.mapFoodError(c, err, "Failed to fetch food logs")
	}
	return c.JSON(fiber.Map{
		"date":      dayStart.Format("2006-01-02"),
		"food_logs": logs,
	})
}

func (h *FoodHandler) DeleteLog(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid food log id"})
	}

	if err := h.tracker.DeleteLog(c.Context(), userID, id); err != nil {
		return h.mapFoodError(c, err, "Failed to delete food log")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FoodHandler) Summary(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	dayStart, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := h.tracker.Summary(c.Context(), userID, dayStart)
	if err != nil {
		return h.mapFoodError(c, err, "Failed to build summary")
	}
	return c.JSON(summary)
}

func (h *FoodHandler) Suggestions(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	dayStart, err := h.day(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	suggestions, remaining, err := h.tracker.Suggest(c.Context(), userID, dayStart)
	if err != nil {
		return h.mapFoodError(c, err, "Failed to generate suggestions")
	}
	return c.JSON(fiber.Map{
		"suggestions": suggestions,
		"remaining":   remaining,
	})
}
