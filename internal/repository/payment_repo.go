package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/NutriScanBack/internal/models"
)

const paymentColumns = `id, user_id, order_id, payment_id, plan, amount, currency, status, created_at`

type CreatePaymentInput struct {
	UserID   int64
	OrderID  string
	Plan     string
	Amount   int64
	Currency string
	Status   string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var payment models.Payment
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.OrderID,
		&payment.PaymentID,
		&payment.Plan,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (user_id, order_id, plan, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query,
		input.UserID, input.OrderID, input.Plan, input.Amount, input.Currency, input.Status))
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, orderID))
}

func (r *PaymentRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 FOR UPDATE`
	return scanPayment(r.db.QueryRow(ctx, query, orderID))
}

// ListByUser returns one page of a user's payments, newest first, plus the
// total count.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Payment, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// MarkPaidIfCreated moves a created payment to paid. pgx.ErrNoRows means the
// payment was not in the created state.
func (r *PaymentRepository) MarkPaidIfCreated(ctx context.Context, id int64, paymentID string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'paid', payment_id = $2
		WHERE id = $1 AND status = 'created'
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, id, paymentID))
}
