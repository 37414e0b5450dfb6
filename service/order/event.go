package order

import (
	"time"

	"github.com/rafata1/storefront/kafka"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/saga_event"
)

func createdEvent(order model.Order, items []model.OrderItem) saga_event.OrderEvent {
	return saga_event.OrderEvent{
		Type:        saga_event.OrderCreated,
		OrderID:     order.ID,
		OwnerID:     order.OwnerID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       saga_event.ItemsFromOrder(items),
		OccurredAt:  time.Now().UTC(),
	}
}

func extractIDs(outboxes []model.Outbox) []int64 {
	var res []int64
	for _, outbox := range outboxes {
		res = append(res, outbox.ID)
	}
	return res
}

func toMessages(outboxes []model.Outbox) []kafka.Message {
	var res []kafka.Message
	for _, outbox := range outboxes {
		res = append(res, kafka.Message{Key: outbox.AggregateID, Value: outbox.Content})
	}
	return res
}
