package models

import "time"

type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderID   string    `json:"order_id"`
	PaymentID *string   `json:"payment_id"`
	Plan      string    `json:"plan"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
