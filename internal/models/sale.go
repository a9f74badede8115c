package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Sale est une vente encaissée. Les lignes sont figées telles qu'au paiement.
type Sale struct {
	ID            gocql.UUID `json:"id"`
	TillID        string     `json:"till_id"`
	Lines         []CartLine `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	Discount      float64    `json:"discount"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"` // "cash" ou "card"
	CashReceived  float64    `json:"cash_received,omitempty"`
	Change        float64    `json:"change,omitempty"`
	CustomerID    *string    `json:"customer_id,omitempty"`
	CashierID     string     `json:"cashier_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
