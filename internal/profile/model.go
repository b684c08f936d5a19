package profile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
)

type Profile struct {
	User      auth.User      `json:"user"`
	Bio       string         `json:"bio"`
	Wishlist  []WishlistItem `json:"wishlist"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WishlistItem is a wishlisted product with its current display data.
type WishlistItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	MainImage string          `json:"main_image"`
	AddedAt   time.Time       `json:"added_at"`
}
