package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is one image in a product's ordered gallery.
//
// Two invariants hold for every product with at least one image:
// exactly one image has IsMain set, and the Index values form a
// contiguous zero-based sequence matching display order.
type ProductImage struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	ImageKey   string    `json:"image_key" db:"image_key"`
	ImageURL   string    `json:"image_url" db:"-"` // presigned, computed at read time
	IsMain     bool      `json:"is_main" db:"is_main"`
	Index      int       `json:"index" db:"position"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}
