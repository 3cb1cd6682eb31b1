package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UserID      uuid.UUID       `json:"user_id"`
}

// Image returns the image URL or "" when none was uploaded.
func (p Product) Image() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

// Snapshot is the denormalized view joined onto cart lines.
func (p Product) Snapshot() *ProductSnapshot {
	return &ProductSnapshot{Name: p.Name, Price: p.Price, ImageURL: p.Image()}
}

// ProductDraft is the admin form before it becomes a product.
type ProductDraft struct {
	Name        string   `form:"name" binding:"required,max=200"`
	Description string   `form:"description" binding:"required,max=4000"`
	Price       string   `form:"price" binding:"required"`
	Category    Category `form:"category" binding:"required,category"`
	ImageURL    string   `form:"image_url"`
}

// NewProductDraft returns the form defaults.
func NewProductDraft() ProductDraft {
	return ProductDraft{Category: CategoryLivingRoom}
}
