package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction est une écriture de caisse (recette ou dépense).
type Transaction struct {
	ID       gocql.UUID  `json:"id"`
	Kind     string      `json:"kind"` // "income" ou "expense"
	Amount   float64     `json:"amount"`
	Label    string      `json:"label"`
	Category string      `json:"category,omitempty"`
	SaleID   *gocql.UUID `json:"sale_id,omitempty"`
	Date     time.Time   `json:"date"`
}
