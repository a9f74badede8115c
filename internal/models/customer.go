package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Customer est un client fidélité du café.
type Customer struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Points    int        `json:"points"`
	CreatedAt time.Time  `json:"created_at"`
}
