package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart lives in Redis keyed by a client-held token, not in Postgres.
type Cart struct {
	Token     string      `json:"token"`
	Items     []*CartItem `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CartView is the cart joined with current product data for display.
type CartView struct {
	Token    string          `json:"token"`
	Items    []*CartViewItem `json:"items"`
	Subtotal float64         `json:"subtotal"`
}

type CartViewItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   float64   `json:"line_total"`
}
