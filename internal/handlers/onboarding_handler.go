package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
	"github.com/saeid-a/NutriScanBack/internal/onboarding"
)

type onboardingFlow interface {
	State(ctx context.Context, userID int64) (*onboarding.State, error)
	Answer(ctx context.Context, userID int64, answers onboarding.Answers) (*onboarding.State, error)
	Next(ctx context.Context, userID int64) (*onboarding.State, error)
	Back(ctx context.Context, userID int64) (*onboarding.State, error)
	Complete(ctx context.Context, userID int64) (*models.Profile, error)
	Submit(ctx context.Context, userID int64, answers onboarding.Answers) (*models.Profile, *onboarding.State, error)
}

type OnboardingHandler struct {
	flow onboardingFlow
	log  *logger.Logger
}

func NewOnboardingHandler(flow onboardingFlow, log *logger.Logger) *OnboardingHandler {
	return &OnboardingHandler{flow: flow, log: log.With("handler", "OnboardingHandler")}
}

type onboardingView struct {
	Step           onboarding.Step   `json:"step"`
	StepIndex      int               `json:"step_index"`
	Steps          []onboarding.Step `json:"steps"`
	TotalSteps     int               `json:"total_steps"`
	Profile        nutrition.Profile `json:"profile"`
	Target         *nutrition.Target `json:"target,omitempty"`
	Plan           *nutrition.Plan   `json:"plan"`
	GoalInfeasible bool              `json:"goal_infeasible"`
	BMI            *float64          `json:"bmi,omitempty"`
	BMICategory    string            `json:"bmi_category,omitempty"`
}

func newOnboardingView(s *onboarding.State) onboardingView {
	steps := s.Steps()
	view := onboardingView{
		Step:       s.Current(),
		StepIndex:  s.Index,
		Steps:      steps,
		TotalSteps: len(steps),
		Profile:    s.Profile,
		Plan:       s.Plan,
	}
	if nutrition.NeedsTarget(s.Profile.Goal) {
		t := s.Target
		view.Target = &t
	}
	if s.Plan != nil {
		view.GoalInfeasible = !s.Plan.Feasible()
		if bmi, err := nutrition.BMI(s.Profile.HeightCM, s.Profile.WeightKG); err == nil {
			view.BMI = &bmi
			view.BMICategory = nutrition.BMICategory(bmi)
		}
	}
	return view
}

// writeOnboardingError maps state machine errors to responses. A blocked
// step carries the unchanged state so the client can stay on it.
func (h *OnboardingHandler) writeOnboardingError(c *fiber.Ctx, state *onboarding.State, err error) error {
	var blocked *onboarding.BlockedError
	switch {
	case errors.As(err, &blocked):
		body := fiber.Map{"error": blocked.Error(), "step": blocked.Step}
		if state != nil {
			body["state"] = newOnboardingView(state)
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	case errors.Is(err, onboarding.ErrInvalidAnswer), errors.Is(err, onboarding.ErrAtResults):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, onboarding.ErrNotAtResults):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, onboarding.ErrPersistFailed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":     onboarding.ErrPersistFailed.Error(),
			"retryable": true,
		})
	default:
		h.log.Error("onboarding request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process onboarding"})
	}
}

func (h *OnboardingHandler) GetState(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	state, err := h.flow.State(c.Context(), userID)
	if err != nil {
		return h.writeOnboardingError(c, state, err)
	}
	return c.JSON(newOnboardingView(state))
}

func (h *OnboardingHandler) Answer(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req onboarding.Answers
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	state, err := h.flow.Answer(c.Context(), userID, req)
	if err != nil {
		return h.writeOnboardingError(c, state, err)
	}
	return c.JSON(newOnboardingView(state))
}

func (h *OnboardingHandler) Next(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	state, err := h.flow.Next(c.Context(), userID)
	if err != nil {
		return h.writeOnboardingError(c, state, err)
	}
	return c.JSON(newOnboardingView(state))
}

func (h *OnboardingHandler) Back(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	state, err := h.flow.Back(c.Context(), userID)
	if err != nil {
		return h.writeOnboardingError(c, state, err)
	}
	return c.JSON(newOnboardingView(state))
}

func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.flow.Complete(c.Context(), userID)
	if err != nil {
		return h.writeOnboardingError(c, nil, err)
	}
	return c.JSON(fiber.Map{
		"profile":             profile,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

// UserOnboarding accepts every answer in one request and walks the same
// step guards as the interactive flow.
func (h *OnboardingHandler) UserOnboarding(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "user" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req onboarding.Answers
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, state, err := h.flow.Submit(c.Context(), userID, req)
	if err != nil {
		return h.writeOnboardingError(c, state, err)
	}

	view := newOnboardingView(state)
	return c.JSON(fiber.Map{
		"profile":             profile,
		"plan":                view.Plan,
		"goal_infeasible":     view.GoalInfeasible,
		"bmi":                 view.BMI,
		"bmi_category":        view.BMICategory,
		"onboarding_complete": profile.OnboardingComplete,
	})
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}
