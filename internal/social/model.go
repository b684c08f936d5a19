package social

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
)

type Comment struct {
	ID        string    `json:"id"`
	User      auth.User `json:"user"`
	ProductID string    `json:"product"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	ID        string    `json:"id"`
	User      auth.User `json:"user"`
	ProductID string    `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

type Rating struct {
	ID        string    `json:"id"`
	User      auth.User `json:"user"`
	ProductID string    `json:"product"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the read-time aggregate shown alongside a product.
type Stats struct {
	LikesCount    int64   `json:"likes_count"`
	CommentsCount int64   `json:"comments_count"`
	AverageRating float64 `json:"average_rating"`
}

const (
	MinStars = 1
	MaxStars = 5
)
