package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type stubGateway struct {
	err         error
	validSig    bool
	lastAmount  int64
	lastReceipt string
	lastNotes   map[string]string
}

func (s *stubGateway) KeyID() string { return "rzp_test_key" }

func (s *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	s.lastAmount = amount
	s.lastReceipt = receipt
	s.lastNotes = notes
	if s.err != nil {
		return nil, s.err
	}
	return &RazorpayOrder{ID: "order_1", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (s *stubGateway) VerifySignature(_, _, _ string) bool { return s.validSig }

type stubPaymentRepo struct {
	created    []repository.CreatePaymentInput
	listed     []models.Payment
	lastLimit  int
	lastOffset int
}

func (s *stubPaymentRepo) Create(_ context.Context, input repository.CreatePaymentInput) (*models.Payment, error) {
	s.created = append(s.created, input)
	return &models.Payment{ID: 1, UserID: input.UserID, OrderID: input.OrderID, Plan: input.Plan, Amount: input.Amount, Status: input.Status}, nil
}

func (s *stubPaymentRepo) ListByUser(_ context.Context, _ int64, limit, offset int) ([]models.Payment, int, error) {
	s.lastLimit, s.lastOffset = limit, offset
	return s.listed, len(s.listed), nil
}

func TestSubscriptionServiceCreateOrder(t *testing.T) {
	gateway := &stubGateway{}
	payments := &stubPaymentRepo{}
	svc := NewSubscriptionService(nil, payments, gateway, logger.NewNop())

	order, err := svc.CreateOrder(context.Background(), 7, " Monthly ")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 26000 || order.Currency != "INR" || order.KeyID != "rzp_test_key" || order.Plan != "monthly" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !strings.HasPrefix(gateway.lastReceipt, "receipt_") || gateway.lastNotes["user_id"] != "7" {
		t.Fatalf("unexpected receipt %q notes %v", gateway.lastReceipt, gateway.lastNotes)
	}
	if len(payments.created) != 1 || payments.created[0].Status != "created" || payments.created[0].OrderID != "order_1" {
		t.Fatalf("expected created payment row, got %+v", payments.created)
	}
}

func TestSubscriptionServiceCreateOrderErrors(t *testing.T) {
	svc := NewSubscriptionService(nil, &stubPaymentRepo{}, &stubGateway{}, logger.NewNop())
	if _, err := svc.CreateOrder(context.Background(), 7, "yearly"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}

	payments := &stubPaymentRepo{}
	svc = NewSubscriptionService(nil, payments, &stubGateway{err: errors.New("gateway down")}, logger.NewNop())
	if _, err := svc.CreateOrder(context.Background(), 7, "trial"); err == nil {
		t.Fatal("expected gateway error")
	}
	if len(payments.created) != 0 {
		t.Fatal("no payment row should exist for a failed order")
	}

	svc = NewSubscriptionService(nil, payments, nil, logger.NewNop())
	if _, err := svc.CreateOrder(context.Background(), 7, "trial"); !errors.Is(err, ErrPaymentsUnavailable) {
		t.Fatalf("expected ErrPaymentsUnavailable, got %v", err)
	}
}

func TestSubscriptionServiceVerifyRejectsBadSignature(t *testing.T) {
	svc := NewSubscriptionService(nil, &stubPaymentRepo{}, &stubGateway{validSig: false}, logger.NewNop())

	_, err := svc.VerifyPayment(context.Background(), 7, VerifyPaymentInput{OrderID: "order_1", PaymentID: "pay_1", Signature: "bad"})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	_, err = svc.VerifyPayment(context.Background(), 7, VerifyPaymentInput{OrderID: "order_1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubscriptionEnd(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	monthly := SubscriptionPlans["monthly"]

	if got := SubscriptionEnd(&models.Profile{}, monthly, now); !got.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("expected fresh subscription to start now, got %v", got)
	}

	activeUntil := now.AddDate(0, 0, 10)
	active := &models.Profile{IsSubscribed: true, SubscriptionEndsAt: &activeUntil}
	if got := SubscriptionEnd(active, monthly, now); !got.Equal(activeUntil.AddDate(0, 0, 30)) {
		t.Fatalf("expected renewal to extend the current end, got %v", got)
	}

	lapsedAt := now.AddDate(0, 0, -3)
	lapsed := &models.Profile{IsSubscribed: true, SubscriptionEndsAt: &lapsedAt}
	if got := SubscriptionEnd(lapsed, SubscriptionPlans["trial"], now); !got.Equal(now.Add(48 * time.Hour)) {
		t.Fatalf("expected lapsed subscription to restart now, got %v", got)
	}
}

func TestLookupPlan(t *testing.T) {
	if plan, ok := LookupPlan("TRIAL"); !ok || plan.Amount != 100 || plan.Days != 2 {
		t.Fatalf("unexpected trial plan %+v", plan)
	}
	if _, ok := LookupPlan(""); ok {
		t.Fatal("expected empty plan name to be unknown")
	}
}

func TestSubscriptionServiceListPaymentsPages(t *testing.T) {
	payments := &stubPaymentRepo{listed: []models.Payment{{ID: 7, OrderID: "order_7"}}}
	svc := NewSubscriptionService(nil, payments, nil, logger.NewNop())

	listed, total, err := svc.ListPayments(context.Background(), 42, 3, 10)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(listed) != 1 || total != 1 {
		t.Fatalf("unexpected page %v total %d", listed, total)
	}
	if payments.lastLimit != 10 || payments.lastOffset != 20 {
		t.Fatalf("expected limit 10 offset 20, got %d %d", payments.lastLimit, payments.lastOffset)
	}

	if _, _, err := svc.ListPayments(context.Background(), 42, 0, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for page 0, got %v", err)
	}
}
