package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafata1/storefront/memstore"
	"github.com/rafata1/storefront/model"
	"github.com/rafata1/storefront/saga_event"
)

type fakeConsumer struct {
	messages chan *sarama.ConsumerMessage
	errors   chan *sarama.ConsumerError
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{
		messages: make(chan *sarama.ConsumerMessage, 8),
		errors:   make(chan *sarama.ConsumerError, 8),
	}
}

func (c *fakeConsumer) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func (c *fakeConsumer) Errors() <-chan *sarama.ConsumerError { return c.errors }

func (c *fakeConsumer) Close() error { return nil }

func seedProduct(store *memstore.Store, stock int) model.Product {
	p := model.Product{
		ID:            uuid.NewString(),
		Name:          "Keyboard",
		Price:         decimal.NewFromInt(10000),
		StockQuantity: stock,
		IsActive:      true,
	}
	store.PutProduct(p)
	return p
}

func cancelledEvent(productID string, qty int) saga_event.OrderEvent {
	return saga_event.OrderEvent{
		Type:    saga_event.OrderCancelled,
		OrderID: uuid.NewString(),
		OwnerID: "user_a",
		Status:  model.OrderCancelled,
		Items:   []saga_event.OrderEventItem{{ProductID: productID, Quantity: qty}},
	}
}

func stockOf(t *testing.T, store *memstore.Store, id string) int {
	t.Helper()
	p, err := store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func Test_RestoreStock_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, newFakeConsumer(), zap.NewNop())
	p := seedProduct(store, 3)
	event := cancelledEvent(p.ID, 2)

	require.NoError(t, svc.RestoreStock(ctx, event))
	require.NoError(t, svc.RestoreStock(ctx, event))

	assert.Equal(t, 5, stockOf(t, store, p.ID))
	processed, err := store.IsProcessed(ctx, event.OrderID)
	require.NoError(t, err)
	assert.True(t, processed)
}

func Test_RestoreStock_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, newFakeConsumer(), zap.NewNop())
	p := seedProduct(store, 3)
	store.FailOn("MarkProcessedOrder", errors.New("deadlock"))

	assert.Error(t, svc.RestoreStock(ctx, cancelledEvent(p.ID, 2)))
	assert.Equal(t, 3, stockOf(t, store, p.ID))
}

func Test_ConsumeOrderEvents(t *testing.T) {
	store := memstore.New()
	consumer := newFakeConsumer()
	svc := NewService(store, consumer, zap.NewNop())
	p := seedProduct(store, 1)

	send := func(event saga_event.OrderEvent) {
		raw, err := json.Marshal(event)
		require.NoError(t, err)
		consumer.messages <- &sarama.ConsumerMessage{Topic: "ORDER_EVENTS_TOPIC", Key: []byte(event.OrderID), Value: raw}
	}

	created := cancelledEvent(p.ID, 4)
	created.Type = saga_event.OrderCreated
	cancelled := cancelledEvent(p.ID, 2)

	consumer.messages <- &sarama.ConsumerMessage{Value: []byte("not json")}
	consumer.errors <- &sarama.ConsumerError{Topic: "ORDER_EVENTS_TOPIC", Err: errors.New("broker gone")}
	send(created)
	send(cancelled)
	send(cancelled)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.ConsumeOrderEvents(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		processed, _ := store.IsProcessed(context.Background(), cancelled.OrderID)
		return processed && len(consumer.messages) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 3, stockOf(t, store, p.ID))
}
