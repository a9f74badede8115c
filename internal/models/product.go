package models

import (
	"time"

	"github.com/gocql/gocql"
)

// ProductOption est une valeur d'option avec son éventuel supplément de prix.
type ProductOption struct {
	Value      string  `json:"value"`
	PriceDelta float64 `json:"price_delta"`
}

// OptionGroup est un groupe d'options d'un produit (taille, sucre, extras…).
// Multi autorise plusieurs sélections dans le groupe.
type OptionGroup struct {
	Name    string          `json:"name"`
	Multi   bool            `json:"multi"`
	Options []ProductOption `json:"options"`
}

type Product struct {
	ID           gocql.UUID    `json:"id" db:"product_id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Price        float64       `json:"price" db:"price"`
	Stock        int           `json:"stock" db:"stock"`
	TrackStock   bool          `json:"track_stock" db:"track_stock"`
	CategoryID   gocql.UUID    `json:"category_id" db:"category_id"`
	ImageURLs    []string      `json:"image_urls" db:"image_urls"`
	Tags         []string      `json:"tags" db:"tags"`
	OptionGroups []OptionGroup `json:"option_groups"`
	IsActive     bool          `json:"is_active" db:"is_active"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
