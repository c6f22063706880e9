package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/services"
)

type stubSubscriptions struct {
	lastPlan   string
	lastVerify services.VerifyPaymentInput
	verifyErr  error
	lastPage   int
	lastLimit  int
}

func (s *stubSubscriptions) CreateOrder(_ context.Context, _ int64, planName string) (*services.CheckoutOrder, error) {
	s.lastPlan = planName
	plan, ok := services.LookupPlan(planName)
	if !ok {
		return nil, services.ErrUnknownPlan
	}
	return &services.CheckoutOrder{OrderID: "order_1", Amount: plan.Amount, Currency: plan.Currency, KeyID: "rzp_test", Plan: plan.Name}, nil
}

func (s *stubSubscriptions) VerifyPayment(_ context.Context, _ int64, in services.VerifyPaymentInput) (*models.Profile, error) {
	s.lastVerify = in
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	ends := time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)
	return &models.Profile{IsSubscribed: true, SubscriptionEndsAt: &ends}, nil
}

func (s *stubSubscriptions) ListPayments(_ context.Context, _ int64, page, limit int) ([]models.Payment, int, error) {
	s.lastPage, s.lastLimit = page, limit
	return []models.Payment{{OrderID: "order_1", Status: "paid"}}, 21, nil
}

func newPaymentApp(subs *stubSubscriptions) *fiber.App {
	handler := NewPaymentHandler(subs, logger.NewNop())
	app := newAuthedApp("42")
	app.Get("/api/v1/payments/plans", handler.Plans)
	app.Post("/api/v1/payments/orders", handler.CreateOrder)
	app.Post("/api/v1/payments/verify", handler.Verify)
	app.Get("/api/v1/payments", handler.List)
	return app
}

func TestPaymentHandlerCreateOrder(t *testing.T) {
	subs := &stubSubscriptions{}
	app := newPaymentApp(subs)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/payments/orders", `{"plan":"trial"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d %v", resp.StatusCode, payload)
	}
	if payload["amount"] != float64(100) || payload["key_id"] != "rzp_test" {
		t.Fatalf("unexpected order %v", payload)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/payments/orders", `{}`)
	if resp.StatusCode != http.StatusCreated || subs.lastPlan != "monthly" {
		t.Fatalf("expected monthly default, got %d %q", resp.StatusCode, subs.lastPlan)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/payments/orders", `{"plan":"lifetime"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown plan, got %d", resp.StatusCode)
	}
}

func TestPaymentHandlerVerify(t *testing.T) {
	subs := &stubSubscriptions{}
	app := newPaymentApp(subs)

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"abc"}`
	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/payments/verify", body)
	if resp.StatusCode != http.StatusOK || payload["is_subscribed"] != true {
		t.Fatalf("unexpected verify response %d %v", resp.StatusCode, payload)
	}
	if subs.lastVerify.PaymentID != "pay_1" || subs.lastVerify.Signature != "abc" {
		t.Fatalf("unexpected input %+v", subs.lastVerify)
	}
}

func TestPaymentHandlerVerifyErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: services.ErrInvalidSignature, status: http.StatusBadRequest},
		{err: services.ErrForbidden, status: http.StatusForbidden},
		{err: services.ErrNotFound, status: http.StatusNotFound},
		{err: services.ErrPaymentsUnavailable, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := newPaymentApp(&stubSubscriptions{verifyErr: tt.err})
			resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/payments/verify", `{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s"}`)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestPaymentHandlerPlansAndList(t *testing.T) {
	app := newPaymentApp(&stubSubscriptions{})

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/payments/plans", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if plans, _ := payload["plans"].([]any); len(plans) != 2 {
		t.Fatalf("expected two plans, got %v", payload)
	}

	resp, payload = doJSON(t, app, http.MethodGet, "/api/v1/payments", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payments, _ := payload["payments"].([]any); len(payments) != 1 {
		t.Fatalf("expected one payment, got %v", payload)
	}
}

func TestPaymentHandlerListPagination(t *testing.T) {
	subs := &stubSubscriptions{}
	app := newPaymentApp(subs)

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/payments?page=2&limit=500", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if subs.lastPage != 2 || subs.lastLimit != maxPageLimit {
		t.Fatalf("expected page 2 limit %d, got %d %d", maxPageLimit, subs.lastPage, subs.lastLimit)
	}
	meta, _ := payload["pagination"].(map[string]any)
	if meta["total"] != float64(21) || meta["total_pages"] != float64(1) {
		t.Fatalf("unexpected pagination %v", meta)
	}

	_, _ = doJSON(t, app, http.MethodGet, "/api/v1/payments?page=abc&limit=-3", "")
	if subs.lastPage != 1 || subs.lastLimit != defaultPageLimit {
		t.Fatalf("expected defaults, got %d %d", subs.lastPage, subs.lastLimit)
	}
}
