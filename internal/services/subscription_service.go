package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/logger"
	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/repository"
)

type SubscriptionPlan struct {
	Name     string        `json:"name"`
	Amount   int64         `json:"amount"`
	Currency string        `json:"currency"`
	Duration time.Duration `json:"-"`
	Days     int           `json:"days"`
}

var SubscriptionPlans = map[string]SubscriptionPlan{
	"trial":   {Name: "trial", Amount: 100, Currency: "INR", Duration: 2 * 24 * time.Hour, Days: 2},
	"monthly": {Name: "monthly", Amount: 26000, Currency: "INR", Duration: 30 * 24 * time.Hour, Days: 30},
}

type orderGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type paymentStore interface {
	Create(ctx context.Context, input repository.CreatePaymentInput) (*models.Payment, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Payment, int, error)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type SubscriptionService struct {
	db          txBeginner
	paymentRepo paymentStore
	gateway     orderGateway
	log         *logger.Logger
	now         func() time.Time
}

func NewSubscriptionService(db txBeginner, paymentRepo paymentStore, gateway orderGateway, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		db:          db,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		log:         log.With("service", "SubscriptionService"),
		now:         time.Now,
	}
}

type CheckoutOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
	Plan     string `json:"plan"`
}

type VerifyPaymentInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

func LookupPlan(name string) (SubscriptionPlan, bool) {
	plan, ok := SubscriptionPlans[strings.ToLower(strings.TrimSpace(name))]
	return plan, ok
}

func (s *SubscriptionService) CreateOrder(ctx context.Context, userID int64, planName string) (*CheckoutOrder, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}
	plan, ok := LookupPlan(planName)
	if !ok {
		return nil, ErrUnknownPlan
	}

	order, err := s.gateway.CreateOrder(ctx, plan.Amount, plan.Currency, "receipt_"+uuid.NewString(), map[string]string{
		"plan":    plan.Name,
		"user_id": strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.paymentRepo.Create(ctx, repository.CreatePaymentInput{
		UserID:   userID,
		OrderID:  order.ID,
		Plan:     plan.Name,
		Amount:   order.Amount,
		Currency: order.Currency,
		Status:   "created",
	}); err != nil {
		return nil, err
	}

	return &CheckoutOrder{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
		Plan:     plan.Name,
	}, nil
}

// VerifyPayment confirms a checkout and extends the subscription. A repeated
// verification of a paid order returns the current profile unchanged.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, userID int64, in VerifyPaymentInput) (*models.Profile, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, ErrInvalidInput
	}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return nil, ErrInvalidSignature
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txProfileRepo := repository.NewProfileRepository(tx)

	payment, err := txPaymentRepo.GetByOrderIDForUpdate(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrForbidden
	}

	profile, err := txProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payment.Status == "paid" {
		return profile, nil
	}

	plan, ok := LookupPlan(payment.Plan)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if _, err := txPaymentRepo.MarkPaidIfCreated(ctx, payment.ID, in.PaymentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	endsAt := SubscriptionEnd(profile, plan, s.now())
	profile, err = txProfileRepo.ActivateSubscription(ctx, userID, endsAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.log.Info("subscription activated", "user_id", userID, "plan", plan.Name, "ends_at", endsAt)
	return profile, nil
}

// ListPayments pages through a user's payment history. page starts at 1.
func (s *SubscriptionService) ListPayments(ctx context.Context, userID int64, page, limit int) ([]models.Payment, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, ErrInvalidInput
	}
	return s.paymentRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
}

// SubscriptionEnd extends an active subscription from its current end and
// starts a lapsed one from now.
func SubscriptionEnd(profile *models.Profile, plan SubscriptionPlan, now time.Time) time.Time {
	start := now
	if profile != nil && profile.SubscriptionActive(now) {
		start = *profile.SubscriptionEndsAt
	}
	return start.Add(plan.Duration).UTC()
}
