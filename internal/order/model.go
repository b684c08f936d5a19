package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is an order line. Name and unit price are snapshots taken at checkout;
// ProductID becomes nil if the product is later deleted.
type Item struct {
	ProductID   *string         `json:"product"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	IsPaid    bool            `json:"is_paid"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []Item          `json:"items"`
}

// Recalculate derives line totals and the order total from the snapshots.
func (o *Order) Recalculate() {
	o.Total = decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		o.Total = o.Total.Add(it.LineTotal)
	}
}
