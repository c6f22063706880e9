package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/services"
)

type subscriptionManager interface {
	CreateOrder(ctx context.Context, userID int64, planName string) (*services.CheckoutOrder, error)
	VerifyPayment(ctx context.Context, userID int64, in services.VerifyPaymentInput) (*models.Profile, error)
	ListPayments(ctx context.Context, userID int64, page, limit int) ([]models.Payment, int, error)
}

type PaymentHandler struct {
	subscriptions subscriptionManager
	log           *logger.Logger
}

func NewPaymentHandler(subscriptions subscriptionManager, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{subscriptions: subscriptions, log: log.With("handler", "PaymentHandler")}
}

type createOrderRequest struct {
	Plan string `json:"plan"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (h *PaymentHandler) mapPaymentError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrUnknownPlan), errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidSignature):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment signature"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payment can no longer be verified"})
	case errors.Is(err, services.ErrPaymentsUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payments are not configured"})
	default:
		h.log.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

func (h *PaymentHandler) Plans(c *fiber.Ctx) error {
	plans := make([]services.SubscriptionPlan, 0, len(services.SubscriptionPlans))
	for _, name := range []string{"trial", "monthly"} {
		plans = append(plans, services.SubscriptionPlans[name])
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Plan == "" {
		req.Plan = "monthly"
	}

	order, err := h.subscriptions.CreateOrder(c.Context(), userID, req.Plan)
	if err != nil {
		return h.mapPaymentError(c, err, "Failed to create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := h.subscriptions.VerifyPayment(c.Context(), userID, services.VerifyPaymentInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return h.mapPaymentError(c, err, "Failed to verify payment")
	}
	return c.JSON(fiber.Map{
		"success":              true,
		"is_subscribed":        profile.IsSubscribed,
		"subscription_ends_at": profile.SubscriptionEndsAt,
	})
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	payments, total, err := h.subscriptions.ListPayments(c.Context(), userID, page, limit)
	if err != nil {
		return h.mapPaymentError(c, err, "Failed to fetch payments")
	}
	return c.JSON(fiber.Map{
		"payments":   payments,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}
