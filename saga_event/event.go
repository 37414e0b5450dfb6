package saga_event

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rafata1/storefront/model"
)

type EventType string

const (
	OrderCreated   EventType = "order_created"
	OrderConfirmed EventType = "order_confirmed"
	OrderCancelled EventType = "order_cancelled"
)

type OrderEventItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderEvent is published for every order status change. Items are set on created and cancelled events.
type OrderEvent struct {
	Type        EventType         `json:"type"`
	OrderID     string            `json:"order_id"`
	OwnerID     string            `json:"owner_id"`
	Status      model.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []OrderEventItem  `json:"items,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func ItemsFromOrder(items []model.OrderItem) []OrderEventItem {
	res := make([]OrderEventItem, 0, len(items))
	for _, item := range items {
		res = append(res, OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return res
}

// Outbox serializes the event into a pending outbox row keyed by the order id.
func (e OrderEvent) Outbox() (model.Outbox, error) {
	content, err := json.Marshal(e)
	if err != nil {
		return model.Outbox{}, err
	}
	return model.Outbox{
		AggregateID: e.OrderID,
		Content:     content,
		Status:      model.OutboxPending,
	}, nil
}
