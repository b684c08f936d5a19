package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
)

const (
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	OrderPlacedSchema       = "contracts/events/order/OrderPlaced.v1.enveloped.schema.json"
)

type OrderPlacedPayload struct {
	OrderID  string            `json:"orderId"`
	UserID   string            `json:"userId"`
	Items    []OrderPlacedItem `json:"items"`
	Total    decimal.Decimal   `json:"total"`
	PlacedAt time.Time         `json:"placedAt"`
}

type OrderPlacedItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// BuildOrderPlacedEnvelope wraps o in a v1 envelope partitioned by order id.
func BuildOrderPlacedEnvelope(o *order.Order, opts EnvelopeOptions) EventEnvelope[OrderPlacedPayload] {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = o.ID
	}

	payload := OrderPlacedPayload{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Items:    make([]OrderPlacedItem, 0, len(o.Items)),
		Total:    o.Total,
		PlacedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		item := OrderPlacedItem{ProductName: it.ProductName, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		if it.ProductID != nil {
			item.ProductID = *it.ProductID
		}
		payload.Items = append(payload.Items, item)
	}

	return EventEnvelope[OrderPlacedPayload]{
		EventName:     OrderPlacedEventName,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      ShopServiceProducer,
		PartitionKey:  partitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        OrderPlacedSchema,
		Payload:       payload,
	}
}
