package cart

import "github.com/shopspring/decimal"

// MaxQuantity bounds a single cart line, including the sum after increments.
const MaxQuantity = 10000

// ProductDetail is the product's current display data, joined at read time.
type ProductDetail struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	MainImage string          `json:"main_image"`
}

type Item struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Product   ProductDetail   `json:"product_detail"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Cart struct {
	UserID string          `json:"user_id"`
	Items  []Item          `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// Line is a locked cart row as seen by checkout, with the product snapshot taken
// inside the same transaction.
type Line struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func newCart(userID string, items []Item) *Cart {
	c := &Cart{UserID: userID, Items: items, Total: decimal.Zero}
	for i := range c.Items {
		it := &c.Items[i]
		it.LineTotal = it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		c.Total = c.Total.Add(it.LineTotal)
	}
	return c
}
