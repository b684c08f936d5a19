package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRef is the short form embedded in product representations.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          string          `json:"id"`
	Category    CategoryRef     `json:"category"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MainImage   string          `json:"main_image"`
	Images      []Image         `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Image struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product"`
	URI       string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryInput struct {
	Name        string
	Description string
}

type ProductInput struct {
	CategoryID  string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	MainImage   string
}

// ProductFilter narrows ListProducts. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID   string
	CategorySlug string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      bool
	Limit        int
	Offset       int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func (f ProductFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultPageSize
	case f.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return f.Limit
	}
}
