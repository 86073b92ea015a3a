package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Category is a free-form
// label; the distinct set of categories is derived from the live catalog
// rather than kept in its own table.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// LowStockThreshold is the stock level at or below which a product is
// flagged on the admin dashboard.
const LowStockThreshold = 5
