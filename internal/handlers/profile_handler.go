package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/repository"
	"github.com/saeid-a/NutriScanBack/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type updateProfileRequest struct {
	FullName       *string  `json:"full_name"`
	Age            *int     `json:"age"`
	Gender         *string  `json:"gender"`
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	Goal           *string  `json:"goal"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
	TimelineMonths *int     `json:"timeline_months"`
}

func profileResponse(profile *models.Profile) fiber.Map {
	body := fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	}
	if plan, ok := profile.Plan(); ok {
		body["goal_infeasible"] = !plan.Feasible()
	}
	if profile.HeightCM != nil && profile.WeightKG != nil {
		if bmi, err := nutrition.BMI(*profile.HeightCM, *profile.WeightKG); err == nil {
			body["bmi"] = bmi
			body["bmi_category"] = nutrition.BMICategory(bmi)
		}
	}
	return body
}

func lowerTrimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.ToLower(strings.TrimSpace(*v))
	return &out
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(profileResponse(profile))
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProfileUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	var fullName *string
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		fullName = &name
	}

	profile, err := h.profileService.UpdateProfile(c.Context(), userID, repository.UpdateProfileInput{
		FullName:       fullName,
		Age:            req.Age,
		Gender:         lowerTrimmed(req.Gender),
		HeightCM:       req.HeightCM,
		WeightKG:       req.WeightKG,
		Goal:           lowerTrimmed(req.Goal),
		TargetWeightKG: req.TargetWeightKG,
		TimelineMonths: req.TimelineMonths,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}

	return c.JSON(profileResponse(profile))
}
